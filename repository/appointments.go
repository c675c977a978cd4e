package repository

import (
	"encoding/json"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"github.com/sevispass/sevispass-backend/models"
)

const appointmentsTable = "biometric_appointments"

type SupabaseAppointmentStore struct {
	supabase *supa.Client
}

func NewSupabaseAppointmentStore(client *supa.Client) *SupabaseAppointmentStore {
	return &SupabaseAppointmentStore{supabase: client}
}

func (s *SupabaseAppointmentStore) ScheduledFor(userID string) (*models.BiometricAppointment, error) {
	data, _, err := s.supabase.From(appointmentsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("status", models.AppointmentScheduled).
		Execute()
	if err != nil {
		return nil, err
	}

	var appts []models.BiometricAppointment
	if err := json.Unmarshal(data, &appts); err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, nil
	}
	return &appts[0], nil
}

func (s *SupabaseAppointmentStore) Insert(appt *models.BiometricAppointment) (*models.BiometricAppointment, error) {
	row := map[string]interface{}{
		"reference":        appt.Reference,
		"user_id":          appt.UserID,
		"location_id":      appt.LocationID,
		"appointment_date": appt.AppointmentDate,
		"appointment_time": appt.AppointmentTime,
		"status":           appt.Status,
		"notes":            appt.Notes,
	}

	data, _, err := s.supabase.From(appointmentsTable).
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return nil, err
	}

	var created []models.BiometricAppointment
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, errNoRows(appointmentsTable)
	}
	return &created[0], nil
}

func (s *SupabaseAppointmentStore) UpdateSlot(id, locationID, date, timeOfDay string) (*models.BiometricAppointment, error) {
	data, _, err := s.supabase.From(appointmentsTable).
		Update(map[string]interface{}{
			"location_id":      locationID,
			"appointment_date": date,
			"appointment_time": timeOfDay,
			"updated_at":       time.Now(),
		}, "", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, err
	}

	var updated []models.BiometricAppointment
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, errNoRows(appointmentsTable)
	}
	return &updated[0], nil
}

func (s *SupabaseAppointmentStore) UpdateStatus(id, status string) error {
	_, _, err := s.supabase.From(appointmentsTable).
		Update(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}, "", "").
		Eq("id", id).
		Execute()
	return err
}

func (s *SupabaseAppointmentStore) CountScheduled(locationID, date, timeOfDay string) (int, error) {
	data, _, err := s.supabase.From(appointmentsTable).
		Select("id", "", false).
		Eq("location_id", locationID).
		Eq("appointment_date", date).
		Eq("appointment_time", timeOfDay).
		Eq("status", models.AppointmentScheduled).
		Execute()
	if err != nil {
		return 0, err
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *SupabaseAppointmentStore) CountsByTime(locationID, date string) (map[string]int, error) {
	data, _, err := s.supabase.From(appointmentsTable).
		Select("appointment_time", "", false).
		Eq("location_id", locationID).
		Eq("appointment_date", date).
		Eq("status", models.AppointmentScheduled).
		Execute()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		AppointmentTime string `json:"appointment_time"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.AppointmentTime]++
	}
	return counts, nil
}
