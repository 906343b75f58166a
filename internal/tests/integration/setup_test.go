package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/config"
	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/middleware"
	"github.com/pushp314/messenger-backend/internal/migrations"
	"github.com/pushp314/messenger-backend/internal/routes"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB migrates a fresh in-memory SQLite database and installs it as
// the global DB the handlers use.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{
		Env:        "test",
		JWTSecret:  "test_secret_key_12345",
		TokenTTL:   time.Hour,
		CookieName: "access_token",
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.AutoMigrate(db))
	require.NoError(t, migrations.NewMigrator(db).Run())

	database.DB = db
	database.Redis = nil
	return db
}

// setupRouter builds the full API without socket.io and without rate limits
// getting in the way of a scripted flow.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	middleware.AuthLimiter = middleware.NewIPRateLimiter(rate.Inf, 1)
	middleware.ChatLimiter = middleware.NewIPRateLimiter(rate.Inf, 1)
	middleware.GeneralLimiter = middleware.NewIPRateLimiter(rate.Inf, 1)

	return routes.NewRouter(nil)
}

func performRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

type session struct {
	ID    string
	Token string
}

// createTestUser registers and logs in a user, returning its id and token.
func createTestUser(t *testing.T, r http.Handler, username string) session {
	t.Helper()
	email := username + "@example.com"

	w := performRequest(r, "POST", "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(r, "POST", "/api/auth/login", map[string]string{
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return session{ID: resp.User.ID, Token: resp.Token}
}
