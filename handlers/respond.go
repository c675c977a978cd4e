package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sevispass/sevispass-backend/models"
	"github.com/sevispass/sevispass-backend/services"
)

// statusFor maps service error codes onto HTTP statuses. The mapping is the
// single source of truth so every endpoint reports the same condition the
// same way.
func statusFor(code string) int {
	switch code {
	case services.ErrValidation, services.ErrInvalidPurpose, services.ErrInvalidCode,
		services.ErrInvalidDate, services.ErrInvalidSlot, services.ErrNotVerified,
		services.ErrWeekendUnavailable, services.ErrTooLateToCancel:
		return http.StatusBadRequest
	case services.ErrNoCodeFound, services.ErrUserNotFound, services.ErrLocationNotFound,
		services.ErrNoAppointment, services.ErrNoAppointmentToReschedule:
		return http.StatusNotFound
	case services.ErrCodeUsed, services.ErrAlreadyBooked, services.ErrSlotFull:
		return http.StatusConflict
	case services.ErrCodeExpired:
		return http.StatusGone
	case services.ErrRateLimited, services.ErrTooManyAttempts:
		return http.StatusTooManyRequests
	case services.ErrDispatchFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondServiceError renders a *services.Error as the standard envelope,
// attaching the retry/attempts hints when present.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Internal server error",
		})
		return
	}

	resp := models.Response{
		Success:   false,
		Error:     svcErr.Message,
		ErrorCode: svcErr.Code,
	}
	if svcErr.Code == services.ErrRateLimited {
		resp.Data = gin.H{"cooldown_seconds": svcErr.CooldownSeconds}
	}
	if svcErr.Code == services.ErrInvalidCode && svcErr.AttemptsRemaining > 0 {
		resp.Data = gin.H{"attempts_remaining": svcErr.AttemptsRemaining}
	}

	c.JSON(statusFor(svcErr.Code), resp)
}
