package handler

import (
	"errors"
	"net/http"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/service"
	"prestado/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError переводит категорию ошибки сервиса в HTTP статус.
// Ошибки хранилища наружу не раскрываются.
func respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrPersistence):
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg(fallback)
		c.JSON(status, entity.ErrorResponse{Error: fallback})
		return
	}

	c.JSON(status, entity.ErrorResponse{Error: err.Error()})
}

// currentUserID достаёт пользователя, выставленного AuthMiddleware
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return "", false
	}

	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Invalid user ID"})
		return "", false
	}

	return userIDStr, true
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
