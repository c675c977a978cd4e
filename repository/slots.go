package repository

import (
	"encoding/json"
	"strconv"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/sevispass/sevispass-backend/models"
)

const (
	slotsTable     = "time_slots"
	locationsTable = "biometric_locations"
)

type SupabaseSlotStore struct {
	supabase *supa.Client
}

func NewSupabaseSlotStore(client *supa.Client) *SupabaseSlotStore {
	return &SupabaseSlotStore{supabase: client}
}

func (s *SupabaseSlotStore) ActiveForDay(locationID string, dayOfWeek int) ([]models.TimeSlot, error) {
	data, _, err := s.supabase.From(slotsTable).
		Select("*", "", false).
		Eq("location_id", locationID).
		Eq("day_of_week", strconv.Itoa(dayOfWeek)).
		Eq("is_active", "true").
		Order("start_time", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, err
	}

	var slots []models.TimeSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *SupabaseSlotStore) Find(locationID string, dayOfWeek int, startTime string) (*models.TimeSlot, error) {
	data, _, err := s.supabase.From(slotsTable).
		Select("*", "", false).
		Eq("location_id", locationID).
		Eq("day_of_week", strconv.Itoa(dayOfWeek)).
		Eq("start_time", startTime).
		Eq("is_active", "true").
		Execute()
	if err != nil {
		return nil, err
	}

	var slots []models.TimeSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}
	return &slots[0], nil
}

type SupabaseLocationStore struct {
	supabase *supa.Client
}

func NewSupabaseLocationStore(client *supa.Client) *SupabaseLocationStore {
	return &SupabaseLocationStore{supabase: client}
}

func (s *SupabaseLocationStore) Active() ([]models.BiometricLocation, error) {
	data, _, err := s.supabase.From(locationsTable).
		Select("*", "", false).
		Eq("is_active", "true").
		Order("name", nil).
		Execute()
	if err != nil {
		return nil, err
	}

	var locations []models.BiometricLocation
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (s *SupabaseLocationStore) ByID(id string) (*models.BiometricLocation, error) {
	data, _, err := s.supabase.From(locationsTable).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, err
	}

	var locations []models.BiometricLocation
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, nil
	}
	return &locations[0], nil
}
