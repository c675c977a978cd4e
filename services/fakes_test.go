package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/sevispass/sevispass-backend/models"
)

// In-memory stores backing the service tests.

type fakeCodeStore struct {
	rows   []*models.VerificationCode
	nextID int
	now    func() time.Time
}

func newFakeCodeStore(now func() time.Time) *fakeCodeStore {
	return &fakeCodeStore{now: now}
}

func (f *fakeCodeStore) Latest(subject, purpose string) (*models.VerificationCode, error) {
	var latest *models.VerificationCode
	for _, row := range f.rows {
		if row.Subject != subject || row.Purpose != purpose {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeCodeStore) Insert(code *models.VerificationCode) (*models.VerificationCode, error) {
	f.nextID++
	cp := *code
	cp.ID = fmt.Sprintf("code-%d", f.nextID)
	cp.CreatedAt = f.now()
	f.rows = append(f.rows, &cp)
	out := cp
	return &out, nil
}

func (f *fakeCodeStore) byID(id string) *models.VerificationCode {
	for _, row := range f.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (f *fakeCodeStore) MarkUsed(id string) error {
	if row := f.byID(id); row != nil {
		now := f.now()
		row.IsUsed = true
		row.UsedAt = &now
	}
	return nil
}

func (f *fakeCodeStore) Consume(id string) (bool, error) {
	row := f.byID(id)
	if row == nil || row.IsUsed {
		return false, nil
	}
	now := f.now()
	row.IsUsed = true
	row.UsedAt = &now
	return true, nil
}

func (f *fakeCodeStore) SetAttempts(id string, attempts int) error {
	if row := f.byID(id); row != nil {
		row.Attempts = attempts
	}
	return nil
}

func (f *fakeCodeStore) InvalidateActive(subject, purpose string) error {
	now := f.now()
	for _, row := range f.rows {
		if row.Subject == subject && row.Purpose == purpose && !row.IsUsed {
			row.IsUsed = true
			row.UsedAt = &now
		}
	}
	return nil
}

func (f *fakeCodeStore) DeleteStale(now time.Time) error {
	kept := f.rows[:0]
	for _, row := range f.rows {
		if !row.IsUsed && now.Before(row.ExpiresAt) {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

type fakeUserStore struct {
	users  []*models.User
	nextID int
}

func (f *fakeUserStore) add(user models.User) *models.User {
	f.nextID++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	cp := user
	f.users = append(f.users, &cp)
	return &cp
}

func (f *fakeUserStore) ByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) ByID(id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Insert(user *models.User) (*models.User, error) {
	created := f.add(*user)
	cp := *created
	return &cp, nil
}

func (f *fakeUserStore) MarkEmailVerified(id string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.IsEmailVerified = true
		}
	}
	return nil
}

func (f *fakeUserStore) Activate(id string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.IsEmailVerified = true
			u.IsActive = true
		}
	}
	return nil
}

func (f *fakeUserStore) UpdateProfile(id string, fields map[string]interface{}) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			if name, ok := fields["full_name"].(string); ok {
				u.FullName = name
			}
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s not found", id)
}

type fakeAppointmentStore struct {
	rows   []*models.BiometricAppointment
	nextID int
}

func (f *fakeAppointmentStore) ScheduledFor(userID string) (*models.BiometricAppointment, error) {
	for _, row := range f.rows {
		if row.UserID == userID && row.Status == models.AppointmentScheduled {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentStore) Insert(appt *models.BiometricAppointment) (*models.BiometricAppointment, error) {
	f.nextID++
	cp := *appt
	cp.ID = fmt.Sprintf("appt-%d", f.nextID)
	f.rows = append(f.rows, &cp)
	out := cp
	return &out, nil
}

func (f *fakeAppointmentStore) UpdateSlot(id, locationID, date, timeOfDay string) (*models.BiometricAppointment, error) {
	for _, row := range f.rows {
		if row.ID == id {
			row.LocationID = locationID
			row.AppointmentDate = date
			row.AppointmentTime = timeOfDay
			cp := *row
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("appointment %s not found", id)
}

func (f *fakeAppointmentStore) UpdateStatus(id, status string) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.Status = status
		}
	}
	return nil
}

func (f *fakeAppointmentStore) CountScheduled(locationID, date, timeOfDay string) (int, error) {
	count := 0
	for _, row := range f.rows {
		if row.LocationID == locationID && row.AppointmentDate == date &&
			row.AppointmentTime == timeOfDay && row.Status == models.AppointmentScheduled {
			count++
		}
	}
	return count, nil
}

func (f *fakeAppointmentStore) CountsByTime(locationID, date string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, row := range f.rows {
		if row.LocationID == locationID && row.AppointmentDate == date &&
			row.Status == models.AppointmentScheduled {
			counts[row.AppointmentTime]++
		}
	}
	return counts, nil
}

type fakeSlotStore struct {
	slots []models.TimeSlot
}

func (f *fakeSlotStore) ActiveForDay(locationID string, dayOfWeek int) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	for _, slot := range f.slots {
		if slot.LocationID == locationID && slot.DayOfWeek == dayOfWeek && slot.IsActive {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakeSlotStore) Find(locationID string, dayOfWeek int, startTime string) (*models.TimeSlot, error) {
	for _, slot := range f.slots {
		if slot.LocationID == locationID && slot.DayOfWeek == dayOfWeek &&
			slot.StartTime == startTime && slot.IsActive {
			cp := slot
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeLocationStore struct {
	locations []models.BiometricLocation
}

func (f *fakeLocationStore) Active() ([]models.BiometricLocation, error) {
	var out []models.BiometricLocation
	for _, loc := range f.locations {
		if loc.IsActive {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (f *fakeLocationStore) ByID(id string) (*models.BiometricLocation, error) {
	for _, loc := range f.locations {
		if loc.ID == id {
			cp := loc
			return &cp, nil
		}
	}
	return nil, nil
}

type sentMail struct {
	to      string
	code    string
	purpose string
}

type fakeNotifier struct {
	sent     []sentMail
	bookings []sentMail
	fail     bool
}

func (f *fakeNotifier) SendCode(to, code, purpose string, ttl time.Duration) error {
	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.sent = append(f.sent, sentMail{to: to, code: code, purpose: purpose})
	return nil
}

func (f *fakeNotifier) SendBookingConfirmation(to, locationName, date, timeOfDay string) error {
	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.bookings = append(f.bookings, sentMail{to: to, purpose: "booking"})
	return nil
}

func (f *fakeNotifier) SendRescheduleConfirmation(to, locationName, date, timeOfDay string) error {
	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.bookings = append(f.bookings, sentMail{to: to, purpose: "reschedule"})
	return nil
}
