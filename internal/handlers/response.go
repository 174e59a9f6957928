package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"plantation-manager/backend/internal/services"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}

// handleServiceError maps the service taxonomy onto HTTP statuses. Anything
// unclassified is logged and reported as a generic server fault.
func handleServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	message := err.Error()
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidState):
		fail(c, http.StatusBadRequest, message)
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, message)
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, message)
	default:
		event := log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath())
		if inner := errors.Unwrap(err); inner != nil {
			event = event.AnErr("cause", inner)
		}
		event.Msg("request failed")
		fail(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// currentUser reads the caller id placed in the context by the auth
// middleware. It writes the 401 itself when the id is missing.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		fail(c, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	str, ok := raw.(string)
	if !ok {
		fail(c, http.StatusUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	id, err := uuid.FromString(str)
	if err != nil || id == uuid.Nil {
		fail(c, http.StatusUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
