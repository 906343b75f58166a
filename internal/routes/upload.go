package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/handlers"
	"github.com/pushp314/messenger-backend/internal/middleware"
)

// RegisterUploadRoutes expects r to be behind AuthMiddleware.
func RegisterUploadRoutes(r gin.IRouter) {
	r.POST("/upload", middleware.ChatRateLimit(), handlers.UploadFile)
}
