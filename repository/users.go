package repository

import (
	"encoding/json"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"github.com/sevispass/sevispass-backend/models"
)

const usersTable = "users"

type SupabaseUserStore struct {
	supabase *supa.Client
}

func NewSupabaseUserStore(client *supa.Client) *SupabaseUserStore {
	return &SupabaseUserStore{supabase: client}
}

func (s *SupabaseUserStore) ByEmail(email string) (*models.User, error) {
	data, _, err := s.supabase.From(usersTable).
		Select("*", "", false).
		Eq("email", email).
		Execute()
	if err != nil {
		return nil, err
	}
	return firstUser(data)
}

func (s *SupabaseUserStore) ByID(id string) (*models.User, error) {
	data, _, err := s.supabase.From(usersTable).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, err
	}
	return firstUser(data)
}

func (s *SupabaseUserStore) Insert(user *models.User) (*models.User, error) {
	row := map[string]interface{}{
		"email":              user.Email,
		"password_hash":      user.PasswordHash,
		"full_name":          user.FullName,
		"national_id":        user.NationalID,
		"phone":              user.Phone,
		"is_email_verified":  user.IsEmailVerified,
		"is_verified":        user.IsVerified,
		"two_factor_enabled": user.TwoFactorEnabled,
		"role":               user.Role,
		"is_active":          user.IsActive,
	}

	data, _, err := s.supabase.From(usersTable).
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return nil, err
	}

	var created []models.User
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, errNoRows(usersTable)
	}
	return &created[0], nil
}

func (s *SupabaseUserStore) MarkEmailVerified(id string) error {
	_, _, err := s.supabase.From(usersTable).
		Update(map[string]interface{}{
			"is_email_verified": true,
			"updated_at":        time.Now(),
		}, "", "").
		Eq("id", id).
		Execute()
	return err
}

func (s *SupabaseUserStore) Activate(id string) error {
	_, _, err := s.supabase.From(usersTable).
		Update(map[string]interface{}{
			"is_email_verified": true,
			"is_active":         true,
			"updated_at":        time.Now(),
		}, "", "").
		Eq("id", id).
		Execute()
	return err
}

func (s *SupabaseUserStore) UpdateProfile(id string, fields map[string]interface{}) (*models.User, error) {
	fields["updated_at"] = time.Now()

	data, _, err := s.supabase.From(usersTable).
		Update(fields, "", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, err
	}

	var updated []models.User
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, errNoRows(usersTable)
	}
	return &updated[0], nil
}

func firstUser(data []byte) (*models.User, error) {
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}
