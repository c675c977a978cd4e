package models

import "time"

// Code purposes. Codes are scoped per (subject, purpose).
const (
	PurposeRegistration  = "registration"
	PurposePasswordReset = "password_reset"
	PurposeEmailChange   = "email_change"
	PurposeActivation    = "activation"
	PurposeTwoFactor     = "2fa-login"
)

// ValidPurpose reports whether p is one of the known code purposes.
func ValidPurpose(p string) bool {
	switch p {
	case PurposeRegistration, PurposePasswordReset, PurposeEmailChange,
		PurposeActivation, PurposeTwoFactor:
		return true
	}
	return false
}

type VerificationCode struct {
	ID          string     `json:"id" db:"id"`
	Subject     string     `json:"subject" db:"subject"`
	Code        string     `json:"code" db:"code"`
	Purpose     string     `json:"purpose" db:"purpose"`
	ExpiresAt   time.Time  `json:"expires_at" db:"expires_at"`
	Attempts    int        `json:"attempts" db:"attempts"`
	MaxAttempts int        `json:"max_attempts" db:"max_attempts"`
	IsUsed      bool       `json:"is_used" db:"is_used"`
	UsedAt      *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type SendCodeRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required"`
}

type VerifyCodeRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required"`
	Code    string `json:"code" binding:"required,len=6,numeric"`
}

type SendEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type TwoFactorRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// CodeStatus is the read-only view returned by the status inspection endpoint.
type CodeStatus struct {
	Exists            bool       `json:"exists"`
	Usable            bool       `json:"usable"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	AttemptsRemaining int        `json:"attempts_remaining"`
}
