package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
)

// statusFor сопоставляет ошибку сервиса с HTTP-кодом
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError отвечает клиенту по типу ошибки. Склеенные ошибки (сохранение главной)
// отдаются списком в поле errors.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	var details []string
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			details = append(details, e.Error())
		}
	}

	if status == http.StatusInternalServerError {
		logger.Error("internal server error",
			zap.String("route", c.FullPath()),
			zap.Error(err))
		body := gin.H{"error": "Internal server error"}
		if len(details) > 0 {
			body["errors"] = details
		}
		c.JSON(status, body)
		return
	}

	body := gin.H{"error": err.Error()}
	if len(details) > 0 {
		body["errors"] = details
	}
	c.JSON(status, body)
}

// bindError отвечает 400 на неразобранное тело запроса
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "bad_request"})
}
