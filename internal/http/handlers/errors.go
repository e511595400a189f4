package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"madchef/internal/domain"
	"madchef/internal/http/middleware"
	"madchef/internal/utils"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message, field string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     http.StatusText(status),
		Code:      code,
		Message:   message,
		Field:     field,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. Anything
// unrecognised is logged and answered with an opaque 500.
func RespondDomainError(c *gin.Context, err error) {
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), verr.Field)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), "")
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error(), "")
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), "")
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), "")
	default:
		utils.Logger(c.Request.Context()).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", "")
	}
}
