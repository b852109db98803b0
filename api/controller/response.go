package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamaepingo/voice-eval/domain"
)

func SuccessResponse(c *gin.Context, key string, payload interface{}) {
	c.JSON(http.StatusOK, gin.H{key: payload})
}

func ErrorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

// FailWith maps the domain error taxonomy onto HTTP statuses. Transient
// backend failures are retryable for the client because every write is an
// idempotent upsert.
func FailWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		ErrorResponse(c, http.StatusBadRequest, "INVALID_SCORE", err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		ErrorResponse(c, http.StatusUnauthorized, "INVALID_SESSION", err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		ErrorResponse(c, http.StatusNotFound, "ITEM_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrNoCurrentItem),
		errors.Is(err, domain.ErrNoPreviousItem),
		errors.Is(err, domain.ErrNotRated):
		ErrorResponse(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case domain.IsConfigError(err):
		ErrorResponse(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", err.Error())
	case domain.IsTransientError(err):
		ErrorResponse(c, http.StatusBadGateway, "BACKEND_ERROR", err.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
