package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/config"
)

// CORSMiddleware allows the configured frontends to call the API with cookies.
// FRONTEND_URL may hold several comma separated origins.
func CORSMiddleware() gin.HandlerFunc {
	origins := []string{"http://localhost:5173"}
	for _, o := range strings.Split(config.AppConfig.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" && o != origins[0] {
			origins = append(origins, o)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
