package apihandlers

import (
	"errors"
	"net/http"

	"servicebot/internal/models"
	"servicebot/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// APIError defines standard error response
// Example: { "error": { "code": "bad_request", "message": "Initial message is required" } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError sends a structured error response
func JSONError(ctx *gin.Context, status int, code, msg string) {
	ctx.AbortWithStatusJSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

// Convenience wrappers
func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, "bad_request", msg)
}

func NotFound(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusNotFound, "not_found", msg)
}

func Internal(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusInternalServerError, "internal_error", msg)
}

func Conflict(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusConflict, "conflict", msg)
}

// respondServiceError maps service errors onto the envelope. Anything
// unrecognized is logged and reported as an opaque 500.
func respondServiceError(ctx *gin.Context, op string, err error, validationMsg, notFoundMsg string) {
	var unknownCategory *models.UnknownCategoryError
	switch {
	case errors.Is(err, models.ErrValidation):
		BadRequest(ctx, validationMsg)
	case errors.Is(err, models.ErrNotFound), errors.Is(err, store.ErrNotFound):
		NotFound(ctx, notFoundMsg)
	case errors.Is(err, models.ErrConversationCompleted):
		Conflict(ctx, "Conversation is already completed")
	case errors.As(err, &unknownCategory):
		log.Errorf("%s: conversation references %v", op, err)
		Internal(ctx, "Internal server error")
	default:
		log.Errorf("%s: %v", op, err)
		Internal(ctx, "Internal server error")
	}
}
