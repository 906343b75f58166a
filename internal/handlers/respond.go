package handlers

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pushp314/messenger-backend/internal/services"
	"github.com/pushp314/messenger-backend/pkg/errors"
	"github.com/pushp314/messenger-backend/pkg/logger"
)

func init() {
	// Report validation failures with the JSON field names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	}
}

// serviceErrors maps domain errors to the response a client sees.
var serviceErrors = []struct {
	err    error
	appErr *errors.AppError
}{
	{services.ErrConversationNotFound, errors.NotFound("Conversation not found")},
	{services.ErrUserNotFound, errors.NotFound("User not found")},
	{services.ErrMemberNotFound, errors.NotFound("User is not a member of this conversation")},
	{services.ErrNotMember, errors.Forbidden("You are not a member of this conversation")},
	{services.ErrNotGroupChat, errors.Conflict("Conversation is not a group chat")},
	{services.ErrEmailTaken, errors.Conflict("Email is already exist")},
	{services.ErrInvalidCredentials, errors.Unauthorized("Email or password is incorrect")},
	{services.ErrEmptyMessage, errors.Unprocessable("Message cannot be empty")},
	{services.ErrMessageTooLong, errors.Unprocessable("Message exceeds maximum length")},
	{services.ErrInvalidMediaURL, errors.Unprocessable("Invalid media url")},
}

// fail attaches err to the request for ErrorHandlerMiddleware and stops the chain.
func fail(c *gin.Context, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		_ = c.Error(appErr)
		c.Abort()
		return
	}
	for _, m := range serviceErrors {
		if stderrors.Is(err, m.err) {
			_ = c.Error(m.appErr)
			c.Abort()
			return
		}
	}

	logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	_ = c.Error(errors.ErrInternalServer)
	c.Abort()
}

// bind decodes the JSON body into req and reports validation failures as 422.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, errors.Unprocessable(validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must have %s %s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}
