package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/config"
	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/middleware"
	"github.com/pushp314/messenger-backend/internal/services"
	"github.com/pushp314/messenger-backend/pkg/logger"
	"github.com/pushp314/messenger-backend/pkg/utils"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// setSessionCookie writes the token as an HTTP-only cookie. SameSite=None lets
// the SPA on another origin send it back.
func setSessionCookie(c *gin.Context, token string, maxAge int) {
	cfg := config.AppConfig
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(cfg.CookieName, token, maxAge, "/", "", cfg.CookieSecure, true)
}

func Register(c *gin.Context) {
	var input RegisterInput
	if !bind(c, &input) {
		return
	}

	user, err := services.Register(c.Request.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		fail(c, err)
		return
	}

	logger.Info().Str("user_id", user.ID).Msg("User registered")
	c.JSON(http.StatusCreated, gin.H{"success": user})
}

func Login(c *gin.Context) {
	var input LoginInput
	if !bind(c, &input) {
		return
	}

	user, err := services.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		logger.Warn().Str("email", input.Email).Msg("Login failed")
		fail(c, err)
		return
	}

	token, claims, err := utils.GenerateToken(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	setSessionCookie(c, token, int(claims.TTL().Seconds()))

	logger.Info().Str("user_id", user.ID).Msg("User logged in")
	c.JSON(http.StatusOK, gin.H{
		"success": "Login successfully",
		"token":   token,
		"user":    user,
	})
}

// Logout clears the cookie and revokes the token until it would have expired.
func Logout(c *gin.Context) {
	if claims := middleware.CurrentClaims(c); claims != nil {
		if err := database.BlacklistToken(c.Request.Context(), claims.ID, claims.TTL()); err != nil {
			logger.Error().Err(err).Str("jti", claims.ID).Msg("Failed to revoke token")
		}
	}

	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": "Logout successfully"})
}
