package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/handlers"
	"github.com/pushp314/messenger-backend/internal/middleware"
)

func RegisterAuthRoutes(r gin.IRouter) {
	auth := r.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		// Needs the session claims to revoke them.
		auth.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
	}
}
