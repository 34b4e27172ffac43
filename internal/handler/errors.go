package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
	"github.com/yourusername/credit-api/internal/service"
)

// handleError maps service errors to HTTP responses with a stable
// error_type the frontend can branch on.
func handleError(c *gin.Context, err error) {
	log.Printf("[Handler] %s %s: %v", c.Request.Method, c.FullPath(), err)

	switch {
	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is not activated", "error_type": "account_inactive"})
	case errors.Is(err, service.ErrInvalidVerificationCode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid verification code", "error_type": "code_invalid"})
	case errors.Is(err, service.ErrVerificationExpired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Verification code has expired", "error_type": "code_expired"})
	case errors.Is(err, service.ErrNoPendingVerificationCode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No pending verification code", "error_type": "code_not_pending"})
	case errors.Is(err, service.ErrVerificationAttemptsExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many failed attempts", "error_type": "code_attempts_exceeded"})
	case errors.Is(err, service.ErrVerificationResendCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Please wait before requesting a new code", "error_type": "resend_cooldown"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "error_type": "forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists", "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	case errors.Is(err, apperrors.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable", "error_type": "unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}
