package models

import "time"

// Appointment statuses.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

type BiometricAppointment struct {
	ID              string    `json:"id" db:"id"`
	Reference       string    `json:"reference" db:"reference"`
	UserID          string    `json:"user_id" db:"user_id"`
	LocationID      string    `json:"location_id" db:"location_id"`
	AppointmentDate string    `json:"appointment_date" db:"appointment_date"`
	AppointmentTime string    `json:"appointment_time" db:"appointment_time"`
	Status          string    `json:"status" db:"status"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type AppointmentWithLocation struct {
	BiometricAppointment
	LocationName    string `json:"location_name"`
	LocationAddress string `json:"location_address"`
}

type BookAppointmentRequest struct {
	LocationID string  `json:"location_id" binding:"required"`
	Date       string  `json:"date" binding:"required"`
	Time       string  `json:"time" binding:"required"`
	Notes      *string `json:"notes,omitempty"`
}

type AvailabilityRequest struct {
	LocationID string `json:"location_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
}

// SlotAvailability is one row of the per-slot capacity report.
type SlotAvailability struct {
	SlotID          string `json:"slot_id"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	MaxAppointments int    `json:"max_appointments"`
	BookedCount     int    `json:"booked_count"`
	SpotsRemaining  int    `json:"spots_remaining"`
	IsAvailable     bool   `json:"is_available"`
}
