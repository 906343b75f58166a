package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/handlers"
)

// RegisterUserRoutes expects r to be behind AuthMiddleware.
func RegisterUserRoutes(r gin.IRouter) {
	r.GET("/user", handlers.GetUser)
	r.GET("/search-messenger", handlers.SearchMessenger)
	r.PUT("/change-profile", handlers.ChangeProfile)
	r.PUT("/edit-profile", handlers.EditProfile)
	r.POST("/search-people-to-add", handlers.SearchPeopleToAdd)
}
