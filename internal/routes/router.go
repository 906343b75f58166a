package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/handlers"
	"github.com/pushp314/messenger-backend/internal/middleware"
)

// NewRouter builds the gin engine. socketServer may be nil, e.g. in tests.
func NewRouter(socketServer *socketio.Server) *gin.Engine {
	r := gin.New()

	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.GeneralRateLimit())

	api := r.Group("/api")
	RegisterAuthRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	RegisterUserRoutes(protected)
	RegisterConvoRoutes(protected)
	RegisterUploadRoutes(protected)

	r.GET("/health", health)

	if socketServer != nil {
		r.GET("/socket.io/*any", handlers.SocketHandler(socketServer))
		r.POST("/socket.io/*any", handlers.SocketHandler(socketServer))
	}
	return r
}

func health(c *gin.Context) {
	dbStatus := "ok"
	if !database.Ping() {
		dbStatus = "error"
	}
	redisStatus := database.PingRedis(c.Request.Context())

	status, code := "ok", http.StatusOK
	if dbStatus != "ok" {
		status, code = "down", http.StatusServiceUnavailable
	} else if redisStatus == "error" {
		status = "degraded"
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
