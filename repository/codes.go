package repository

import (
	"encoding/json"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/sevispass/sevispass-backend/models"
)

const codesTable = "verification_codes"

type SupabaseCodeStore struct {
	supabase *supa.Client
}

func NewSupabaseCodeStore(client *supa.Client) *SupabaseCodeStore {
	return &SupabaseCodeStore{supabase: client}
}

func (s *SupabaseCodeStore) Latest(subject, purpose string) (*models.VerificationCode, error) {
	data, _, err := s.supabase.From(codesTable).
		Select("*", "", false).
		Eq("subject", subject).
		Eq("purpose", purpose).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, err
	}

	var codes []models.VerificationCode
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, nil
	}
	return &codes[0], nil
}

func (s *SupabaseCodeStore) Insert(code *models.VerificationCode) (*models.VerificationCode, error) {
	row := map[string]interface{}{
		"subject":      code.Subject,
		"code":         code.Code,
		"purpose":      code.Purpose,
		"expires_at":   code.ExpiresAt,
		"attempts":     code.Attempts,
		"max_attempts": code.MaxAttempts,
		"is_used":      code.IsUsed,
	}

	data, _, err := s.supabase.From(codesTable).
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return nil, err
	}

	var created []models.VerificationCode
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, errNoRows(codesTable)
	}
	return &created[0], nil
}

func (s *SupabaseCodeStore) MarkUsed(id string) error {
	_, _, err := s.supabase.From(codesTable).
		Update(map[string]interface{}{
			"is_used": true,
			"used_at": time.Now(),
		}, "", "").
		Eq("id", id).
		Execute()
	return err
}

// Consume is a conditional update: only one caller can flip is_used for a
// given row, which closes the read-then-write race on concurrent verifies.
func (s *SupabaseCodeStore) Consume(id string) (bool, error) {
	data, _, err := s.supabase.From(codesTable).
		Update(map[string]interface{}{
			"is_used": true,
			"used_at": time.Now(),
		}, "", "").
		Eq("id", id).
		Eq("is_used", "false").
		Execute()
	if err != nil {
		return false, err
	}

	var updated []models.VerificationCode
	if err := json.Unmarshal(data, &updated); err != nil {
		return false, err
	}
	return len(updated) > 0, nil
}

func (s *SupabaseCodeStore) SetAttempts(id string, attempts int) error {
	_, _, err := s.supabase.From(codesTable).
		Update(map[string]interface{}{"attempts": attempts}, "", "").
		Eq("id", id).
		Execute()
	return err
}

func (s *SupabaseCodeStore) InvalidateActive(subject, purpose string) error {
	_, _, err := s.supabase.From(codesTable).
		Update(map[string]interface{}{
			"is_used": true,
			"used_at": time.Now(),
		}, "", "").
		Eq("subject", subject).
		Eq("purpose", purpose).
		Eq("is_used", "false").
		Execute()
	return err
}

func (s *SupabaseCodeStore) DeleteStale(now time.Time) error {
	if _, _, err := s.supabase.From(codesTable).
		Delete("", "").
		Eq("is_used", "true").
		Execute(); err != nil {
		return err
	}

	_, _, err := s.supabase.From(codesTable).
		Delete("", "").
		Lt("expires_at", now.UTC().Format(time.RFC3339)).
		Execute()
	return err
}
