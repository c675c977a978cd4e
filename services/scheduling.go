package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sevispass/sevispass-backend/models"
	"github.com/sevispass/sevispass-backend/repository"
)

const dateLayout = "2006-01-02"

// SchedulingService owns availability calculation, booking, reschedule and
// cancellation for biometric appointments.
type SchedulingService struct {
	appointments repository.AppointmentStore
	slots        repository.SlotStore
	locations    repository.LocationStore
	users        repository.UserStore
	notifier     Notifier

	now func() time.Time
}

func NewSchedulingService(
	appointments repository.AppointmentStore,
	slots repository.SlotStore,
	locations repository.LocationStore,
	users repository.UserStore,
	notifier Notifier,
) *SchedulingService {
	return &SchedulingService{
		appointments: appointments,
		slots:        slots,
		locations:    locations,
		users:        users,
		notifier:     notifier,
		now:          time.Now,
	}
}

// newReference builds the booking reference printed on confirmations,
// e.g. BIO-1B9F0C2A.
func newReference() string {
	id := strings.ToUpper(uuid.NewString())
	return "BIO-" + id[:8]
}

// isoWeekday maps time.Weekday to ISO numbering, 1=Monday..7=Sunday.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func parseDate(date string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, date, time.Local)
}

// parseTimeOfDay accepts HH:MM or the HH:MM:SS form Postgres returns.
func parseTimeOfDay(value string) (time.Duration, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(value, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(value, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time of day %q", value)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

// sameTimeOfDay compares slot times ignoring the optional seconds suffix.
func sameTimeOfDay(a, b string) bool {
	da, errA := parseTimeOfDay(a)
	db, errB := parseTimeOfDay(b)
	return errA == nil && errB == nil && da == db
}

// Availability returns the per-slot capacity report for a location and date.
// Negative remainders from overbooked slots are reported as zero.
func (s *SchedulingService) Availability(locationID, date string) ([]models.SlotAvailability, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, newError(ErrInvalidDate, "Date must be in YYYY-MM-DD format")
	}

	location, err := s.locations.ByID(locationID)
	if err != nil {
		return nil, internalError(err)
	}
	if location == nil {
		return nil, newError(ErrLocationNotFound, "Biometric location not found")
	}

	weekday := isoWeekday(day)
	if weekday > 5 {
		return nil, newError(ErrWeekendUnavailable, "Appointments are only available Monday to Friday")
	}

	slots, err := s.slots.ActiveForDay(locationID, weekday)
	if err != nil {
		return nil, internalError(err)
	}

	counts, err := s.appointments.CountsByTime(locationID, date)
	if err != nil {
		return nil, internalError(err)
	}

	report := make([]models.SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		booked := 0
		for bookedTime, n := range counts {
			if sameTimeOfDay(bookedTime, slot.StartTime) {
				booked += n
			}
		}
		remaining := slot.MaxAppointments - booked
		if remaining < 0 {
			remaining = 0
		}
		report = append(report, models.SlotAvailability{
			SlotID:          slot.ID,
			StartTime:       slot.StartTime,
			EndTime:         slot.EndTime,
			MaxAppointments: slot.MaxAppointments,
			BookedCount:     booked,
			SpotsRemaining:  remaining,
			IsAvailable:     remaining > 0,
		})
	}
	return report, nil
}

// validateSlot runs the shared date/slot/capacity checks used by both Book
// and Reschedule, returning the matched slot.
func (s *SchedulingService) validateSlot(locationID, date, timeOfDay string) (*models.TimeSlot, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, newError(ErrInvalidDate, "Date must be in YYYY-MM-DD format")
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if !day.After(today) {
		return nil, newError(ErrInvalidDate, "Appointment date must be in the future")
	}

	weekday := isoWeekday(day)
	if weekday > 5 {
		return nil, newError(ErrInvalidDate, "Appointments are only available Monday to Friday")
	}

	slot, err := s.slots.Find(locationID, weekday, timeOfDay)
	if err != nil {
		return nil, internalError(err)
	}
	if slot == nil {
		return nil, newError(ErrInvalidSlot, "No active time slot matches the requested location, day and time")
	}

	booked, err := s.appointments.CountScheduled(locationID, date, timeOfDay)
	if err != nil {
		return nil, internalError(err)
	}
	if booked >= slot.MaxAppointments {
		return nil, newError(ErrSlotFull, "The selected time slot is fully booked")
	}

	return slot, nil
}

// Book creates a scheduled appointment after the full precondition chain:
// user exists and is verified, holds no scheduled appointment, and the
// requested slot is valid and under capacity.
func (s *SchedulingService) Book(userID, locationID, date, timeOfDay string, notes *string) (*models.BiometricAppointment, error) {
	user, err := s.users.ByID(userID)
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil {
		return nil, newError(ErrUserNotFound, "User not found")
	}
	if !user.IsVerified {
		return nil, newError(ErrNotVerified, "Identity verification must be completed before booking")
	}

	existing, err := s.appointments.ScheduledFor(userID)
	if err != nil {
		return nil, internalError(err)
	}
	if existing != nil {
		return nil, newError(ErrAlreadyBooked, "You already have a scheduled appointment. Reschedule or cancel it first.")
	}

	if _, err := s.validateSlot(locationID, date, timeOfDay); err != nil {
		return nil, err
	}

	created, err := s.appointments.Insert(&models.BiometricAppointment{
		Reference:       newReference(),
		UserID:          userID,
		LocationID:      locationID,
		AppointmentDate: date,
		AppointmentTime: timeOfDay,
		Status:          models.AppointmentScheduled,
		Notes:           notes,
	})
	if err != nil {
		return nil, internalError(err)
	}

	s.notifyBestEffort(user.Email, locationID, date, timeOfDay, false)
	return created, nil
}

// Reschedule moves the subject's scheduled appointment in place: same row,
// new location/date/time. No history of the prior slot is kept.
func (s *SchedulingService) Reschedule(userID, locationID, date, timeOfDay string) (*models.BiometricAppointment, error) {
	existing, err := s.appointments.ScheduledFor(userID)
	if err != nil {
		return nil, internalError(err)
	}
	if existing == nil {
		return nil, newError(ErrNoAppointmentToReschedule, "No scheduled appointment to reschedule")
	}

	if _, err := s.validateSlot(locationID, date, timeOfDay); err != nil {
		return nil, err
	}

	updated, err := s.appointments.UpdateSlot(existing.ID, locationID, date, timeOfDay)
	if err != nil {
		return nil, internalError(err)
	}

	if user, err := s.users.ByID(userID); err == nil && user != nil {
		s.notifyBestEffort(user.Email, locationID, date, timeOfDay, true)
	}
	return updated, nil
}

// Cancel flips the scheduled appointment to cancelled. Allowed only while
// the appointment start is at least 24 hours away.
func (s *SchedulingService) Cancel(userID string) error {
	existing, err := s.appointments.ScheduledFor(userID)
	if err != nil {
		return internalError(err)
	}
	if existing == nil {
		return newError(ErrNoAppointment, "No appointment found")
	}

	day, err := parseDate(existing.AppointmentDate)
	if err != nil {
		return internalError(err)
	}
	offset, err := parseTimeOfDay(existing.AppointmentTime)
	if err != nil {
		return internalError(err)
	}
	start := day.Add(offset)

	if start.Sub(s.now()) < 24*time.Hour {
		return newError(ErrTooLateToCancel, "Appointments can only be cancelled at least 24 hours in advance")
	}

	if err := s.appointments.UpdateStatus(existing.ID, models.AppointmentCancelled); err != nil {
		return internalError(err)
	}
	return nil
}

// UserAppointment returns the subject's scheduled appointment joined with
// its location.
func (s *SchedulingService) UserAppointment(userID string) (*models.AppointmentWithLocation, error) {
	existing, err := s.appointments.ScheduledFor(userID)
	if err != nil {
		return nil, internalError(err)
	}
	if existing == nil {
		return nil, newError(ErrNoAppointment, "No appointment found")
	}

	result := &models.AppointmentWithLocation{BiometricAppointment: *existing}
	if location, err := s.locations.ByID(existing.LocationID); err == nil && location != nil {
		result.LocationName = location.Name
		result.LocationAddress = location.Address
	}
	return result, nil
}

// Locations lists active biometric centres.
func (s *SchedulingService) Locations() ([]models.BiometricLocation, error) {
	locations, err := s.locations.Active()
	if err != nil {
		return nil, internalError(err)
	}
	return locations, nil
}

// notifyBestEffort sends the confirmation email; a failure never rolls back
// the booking.
func (s *SchedulingService) notifyBestEffort(email, locationID, date, timeOfDay string, reschedule bool) {
	locationName := locationID
	if location, err := s.locations.ByID(locationID); err == nil && location != nil {
		locationName = location.Name
	}

	var err error
	if reschedule {
		err = s.notifier.SendRescheduleConfirmation(email, locationName, date, timeOfDay)
	} else {
		err = s.notifier.SendBookingConfirmation(email, locationName, date, timeOfDay)
	}
	if err != nil {
		fmt.Printf("[Scheduling] Warning: confirmation email to %s failed: %v\n", email, err)
	}
}
