package models

import "time"

type BiometricLocation struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	City      string    `json:"city" db:"city"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TimeSlot is reference data: a bookable window at a location on a weekday.
// day_of_week uses 1=Monday..5=Friday; weekends have no slots.
type TimeSlot struct {
	ID              string    `json:"id" db:"id"`
	LocationID      string    `json:"location_id" db:"location_id"`
	DayOfWeek       int       `json:"day_of_week" db:"day_of_week"`
	StartTime       string    `json:"start_time" db:"start_time"`
	EndTime         string    `json:"end_time" db:"end_time"`
	MaxAppointments int       `json:"max_appointments" db:"max_appointments"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
