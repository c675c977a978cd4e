package repository

import (
	"fmt"
	"time"

	"github.com/sevispass/sevispass-backend/models"
)

func errNoRows(table string) error {
	return fmt.Errorf("%s: write returned no rows", table)
}

// One method per concrete query. Lookups that can legitimately find nothing
// return (nil, nil) so callers can tell "absent" from "query failed".

type CodeStore interface {
	// Latest returns the most recent code for (subject, purpose) regardless
	// of used/expiry state.
	Latest(subject, purpose string) (*models.VerificationCode, error)
	Insert(code *models.VerificationCode) (*models.VerificationCode, error)
	MarkUsed(id string) error
	// Consume marks the code used only if it is still unused, returning
	// whether this caller won the update.
	Consume(id string) (bool, error)
	SetAttempts(id string, attempts int) error
	// InvalidateActive marks every unused code for (subject, purpose) used.
	InvalidateActive(subject, purpose string) error
	// DeleteStale removes rows that are used or expired as of now.
	DeleteStale(now time.Time) error
}

type UserStore interface {
	ByEmail(email string) (*models.User, error)
	ByID(id string) (*models.User, error)
	Insert(user *models.User) (*models.User, error)
	MarkEmailVerified(id string) error
	// Activate flips both the email-verified and active flags.
	Activate(id string) error
	UpdateProfile(id string, fields map[string]interface{}) (*models.User, error)
}

type AppointmentStore interface {
	ScheduledFor(userID string) (*models.BiometricAppointment, error)
	Insert(appt *models.BiometricAppointment) (*models.BiometricAppointment, error)
	// UpdateSlot overwrites location/date/time on the existing row.
	UpdateSlot(id, locationID, date, timeOfDay string) (*models.BiometricAppointment, error)
	UpdateStatus(id, status string) error
	CountScheduled(locationID, date, timeOfDay string) (int, error)
	// CountsByTime returns scheduled-appointment counts for a location and
	// date, keyed by appointment_time.
	CountsByTime(locationID, date string) (map[string]int, error)
}

type SlotStore interface {
	ActiveForDay(locationID string, dayOfWeek int) ([]models.TimeSlot, error)
	Find(locationID string, dayOfWeek int, startTime string) (*models.TimeSlot, error)
}

type LocationStore interface {
	Active() ([]models.BiometricLocation, error)
	ByID(id string) (*models.BiometricLocation, error)
}
