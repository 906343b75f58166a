package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/middleware"
	"github.com/pushp314/messenger-backend/internal/services"
	"github.com/pushp314/messenger-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func failWith(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware())
	r.GET("/", func(c *gin.Context) { fail(c, err) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestFailMapsServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{services.ErrConversationNotFound, http.StatusNotFound},
		{services.ErrNotMember, http.StatusForbidden},
		{services.ErrNotGroupChat, http.StatusConflict},
		{services.ErrEmailTaken, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrEmptyMessage, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", services.ErrUserNotFound), http.StatusNotFound},
		{errors.Unavailable("down"), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := failWith(tt.err)
		assert.Equal(t, tt.code, w.Code, tt.err.Error())
		assert.Contains(t, w.Body.String(), `"error":`)
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	w := failWith(fmt.Errorf("pq: relation does not exist"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Contains(t, w.Body.String(), errors.ErrInternalServer.Message)
}

func TestParseIDs(t *testing.T) {
	ids, ok := parseIDs(`["a","b"]`)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, ids)

	ids, ok = parseIDs("a,b")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, ids)

	_, ok = parseIDs("")
	assert.False(t, ok)

	_, ok = parseIDs(`["a"`)
	assert.False(t, ok)

	_, ok = parseIDs("[]")
	assert.False(t, ok)
}
