package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/config"
	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/models"
	"github.com/pushp314/messenger-backend/pkg/errors"
	"github.com/pushp314/messenger-backend/pkg/utils"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "userId"
	UserKey   = "user"
	ClaimsKey = "claims"
)

// SessionToken extracts the session token from the cookie, falling back to
// an Authorization: Bearer header for non-browser clients.
func SessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(config.AppConfig.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Authenticate resolves a session token to its claims and user.
func Authenticate(ctx context.Context, token string) (*utils.Claims, *models.User, *errors.AppError) {
	if token == "" {
		return nil, nil, errors.ErrUnauthorized
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, nil, errors.Unauthorized("Invalid or expired token")
	}
	if database.IsTokenBlacklisted(ctx, claims.ID) {
		return nil, nil, errors.Unauthorized("Token has been revoked")
	}

	var user models.User
	if err := database.DB.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil, nil, errors.Unauthorized("Invalid token")
	}
	return claims, &user, nil
}

// AuthMiddleware rejects the request unless it carries a valid session for an
// existing user. Handlers behind it read the user with CurrentUser.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, user, appErr := Authenticate(c.Request.Context(), SessionToken(c.Request))
		if appErr != nil {
			c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// CurrentUser returns the user resolved by AuthMiddleware. It panics when
// called on a route that is not behind AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(UserKey).(*models.User)
}

// CurrentClaims returns the session claims, or nil.
func CurrentClaims(c *gin.Context) *utils.Claims {
	claims, _ := c.Get(ClaimsKey)
	cl, _ := claims.(*utils.Claims)
	return cl
}
