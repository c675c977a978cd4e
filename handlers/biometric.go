package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sevispass/sevispass-backend/models"
	"github.com/sevispass/sevispass-backend/services"
)

// BiometricHandler covers appointment availability, booking, reschedule,
// cancellation, and the location directory.
type BiometricHandler struct {
	scheduling *services.SchedulingService
}

func NewBiometricHandler(scheduling *services.SchedulingService) *BiometricHandler {
	return &BiometricHandler{scheduling: scheduling}
}

func (h *BiometricHandler) GetLocations(c *gin.Context) {
	locations, err := h.scheduling.Locations()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    locations,
	})
}

func (h *BiometricHandler) Availability(c *gin.Context) {
	var req models.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "location_id and date are required",
		})
		return
	}

	slots, err := h.scheduling.Availability(req.LocationID, req.Date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    slots,
	})
}

func (h *BiometricHandler) Book(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req models.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "location_id, date and time are required",
		})
		return
	}

	appt, err := h.scheduling.Book(userID.(string), req.LocationID, req.Date, req.Time, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Appointment booked",
		Data:    appt,
	})
}

func (h *BiometricHandler) Reschedule(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req models.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "location_id, date and time are required",
		})
		return
	}

	appt, err := h.scheduling.Reschedule(userID.(string), req.LocationID, req.Date, req.Time)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Appointment rescheduled",
		Data:    appt,
	})
}

func (h *BiometricHandler) Cancel(c *gin.Context) {
	userID, _ := c.Get("user_id")

	if err := h.scheduling.Cancel(userID.(string)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Appointment cancelled",
	})
}

func (h *BiometricHandler) UserAppointment(c *gin.Context) {
	userID, _ := c.Get("user_id")

	appt, err := h.scheduling.UserAppointment(userID.(string))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    appt,
	})
}
