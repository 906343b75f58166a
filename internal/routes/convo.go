package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/handlers"
	"github.com/pushp314/messenger-backend/internal/middleware"
)

// RegisterConvoRoutes expects r to be behind AuthMiddleware.
func RegisterConvoRoutes(r gin.IRouter) {
	r.POST("/create-convo", handlers.CreateConvo)
	r.GET("/convo-messages/:conversationId", handlers.ConvoMessages)
	r.GET("/my-conversations", handlers.MyConversations)
	r.GET("/new-convo-messages", handlers.NewConvoMessages)
	r.PUT("/seen-message", handlers.SeenMessage)
	r.PUT("/archive-convo", handlers.ArchiveConvo)
	r.GET("/my-archive", handlers.MyArchive)
	r.PUT("/delete-chat", handlers.DeleteChat)

	// Everything that appends a message shares the chat limiter.
	send := r.Group("")
	send.Use(middleware.ChatRateLimit())
	{
		send.POST("/send-chat", handlers.SendChat)
		send.POST("/send-gif", handlers.SendGif)
		send.POST("/quick-reaction", handlers.QuickReaction)
		send.POST("/new-quick-reaction", handlers.NewQuickReaction)
		send.POST("/new-convo", handlers.NewConvo)
	}

	r.PUT("/leave-group-chat", handlers.LeaveGroupChat)
	r.PUT("/change-gc-name", handlers.ChangeGcName)
	r.PUT("/add-people-in-group-chat", handlers.AddPeopleInGroupChat)
	r.PUT("/change-gc-profile", handlers.ChangeGcProfile)
	r.PUT("/make-admin", handlers.MakeAdmin)
	r.PUT("/remove-member", handlers.RemoveMember)
}
