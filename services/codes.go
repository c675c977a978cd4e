package services

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"time"

	"github.com/sevispass/sevispass-backend/models"
	"github.com/sevispass/sevispass-backend/repository"
)

const defaultMaxAttempts = 5

var codePattern = regexp.MustCompile(`^\d{6}$`)

// CodeService owns the verification-code lifecycle: issue with cooldown,
// verify with attempt budgeting and single-use consumption, status
// inspection, and the stale-row sweep.
type CodeService struct {
	codes    repository.CodeStore
	users    repository.UserStore
	notifier Notifier

	// allowInsecureBypass skips 2FA prior-code invalidation. Only settable
	// outside production; see config.NewConfig.
	allowInsecureBypass bool

	now func() time.Time
}

func NewCodeService(codes repository.CodeStore, users repository.UserStore, notifier Notifier, allowInsecureBypass bool) *CodeService {
	return &CodeService{
		codes:               codes,
		users:               users,
		notifier:            notifier,
		allowInsecureBypass: allowInsecureBypass,
		now:                 time.Now,
	}
}

func ttlFor(purpose string) time.Duration {
	if purpose == models.PurposeActivation {
		return 24 * time.Hour
	}
	return 10 * time.Minute
}

func cooldownFor(purpose string) time.Duration {
	if purpose == models.PurposeActivation {
		return 5 * time.Minute
	}
	return 2 * time.Minute
}

// generateCode returns a uniformly random 6-digit code, 000000 through
// 999999, one digit at a time from crypto/rand.
func generateCode() string {
	code := ""
	for i := 0; i < 6; i++ {
		num, _ := rand.Int(rand.Reader, big.NewInt(10))
		code += fmt.Sprintf("%d", num.Int64())
	}
	return code
}

// Issue generates, stores and dispatches a fresh code for (subject, purpose).
// A still-unused code younger than the purpose's cooldown blocks the request
// with RATE_LIMITED. If dispatch fails the stored code is invalidated so a
// code the subject never received can never be accepted.
func (s *CodeService) Issue(subject, purpose string) (*models.VerificationCode, error) {
	if subject == "" {
		return nil, newError(ErrValidation, "Subject is required")
	}
	if !models.ValidPurpose(purpose) {
		return nil, newError(ErrInvalidPurpose, "Unknown code purpose: "+purpose)
	}

	latest, err := s.codes.Latest(subject, purpose)
	if err != nil {
		return nil, internalError(err)
	}

	cooldown := cooldownFor(purpose)
	if latest != nil && !latest.IsUsed {
		elapsed := s.now().Sub(latest.CreatedAt)
		if elapsed < cooldown {
			remaining := int(math.Ceil((cooldown - elapsed).Seconds()))
			return nil, &Error{
				Code:            ErrRateLimited,
				Message:         fmt.Sprintf("Please wait %d seconds before requesting a new code", remaining),
				CooldownSeconds: remaining,
			}
		}
	}

	// A fresh 2FA code supersedes every outstanding one for the subject.
	if purpose == models.PurposeTwoFactor && !s.allowInsecureBypass {
		if err := s.codes.InvalidateActive(subject, purpose); err != nil {
			fmt.Printf("[CodeService] Warning: failed to invalidate previous codes for %s: %v\n", subject, err)
		}
	}

	ttl := ttlFor(purpose)
	created, err := s.codes.Insert(&models.VerificationCode{
		Subject:     subject,
		Code:        generateCode(),
		Purpose:     purpose,
		ExpiresAt:   s.now().Add(ttl),
		MaxAttempts: defaultMaxAttempts,
	})
	if err != nil {
		return nil, internalError(err)
	}

	if err := s.notifier.SendCode(subject, created.Code, purpose, ttl); err != nil {
		fmt.Printf("[CodeService] Dispatch failed for %s: %v\n", subject, err)
		if markErr := s.codes.MarkUsed(created.ID); markErr != nil {
			fmt.Printf("[CodeService] Warning: failed to invalidate undelivered code %s: %v\n", created.ID, markErr)
		}
		return nil, newError(ErrDispatchFailed, "Failed to send verification code. Please try again.")
	}

	return created, nil
}

// Verify checks submitted against the most recent code for (subject,
// purpose). Check order is fixed: missing, used, expired, attempts
// exhausted, mismatch. Expiry and attempt exhaustion permanently invalidate
// the row; a mismatch burns one attempt.
func (s *CodeService) Verify(subject, purpose, submitted string) (*models.VerificationCode, error) {
	if !codePattern.MatchString(submitted) {
		return nil, newError(ErrInvalidCode, "Code must be exactly 6 digits")
	}

	rec, err := s.codes.Latest(subject, purpose)
	if err != nil {
		return nil, internalError(err)
	}
	if rec == nil {
		return nil, newError(ErrNoCodeFound, "No verification code found. Please request a new one.")
	}

	if rec.IsUsed {
		return nil, newError(ErrCodeUsed, "This code has already been used. Please request a new one.")
	}

	if !s.now().Before(rec.ExpiresAt) {
		if err := s.codes.MarkUsed(rec.ID); err != nil {
			fmt.Printf("[CodeService] Warning: failed to mark expired code %s used: %v\n", rec.ID, err)
		}
		return nil, newError(ErrCodeExpired, "This code has expired. Please request a new one.")
	}

	if rec.Attempts >= rec.MaxAttempts {
		if err := s.codes.MarkUsed(rec.ID); err != nil {
			fmt.Printf("[CodeService] Warning: failed to mark exhausted code %s used: %v\n", rec.ID, err)
		}
		return nil, newError(ErrTooManyAttempts, "Too many incorrect attempts. Please request a new code.")
	}

	if submitted != rec.Code {
		attempts := rec.Attempts + 1
		if err := s.codes.SetAttempts(rec.ID, attempts); err != nil {
			// The user still gets the failure even if the bump was lost.
			fmt.Printf("[CodeService] Warning: failed to bump attempts on %s: %v\n", rec.ID, err)
		}
		remaining := rec.MaxAttempts - attempts
		return nil, &Error{
			Code:              ErrInvalidCode,
			Message:           fmt.Sprintf("Invalid code. %d attempts remaining.", remaining),
			AttemptsRemaining: remaining,
		}
	}

	won, err := s.codes.Consume(rec.ID)
	if err != nil {
		return nil, internalError(err)
	}
	if !won {
		// A concurrent verify consumed it first.
		return nil, newError(ErrCodeUsed, "This code has already been used. Please request a new one.")
	}

	switch purpose {
	case models.PurposeRegistration:
		s.flagUser(subject, false)
	case models.PurposeActivation:
		s.flagUser(subject, true)
	}

	return rec, nil
}

// flagUser records email verification (and activation) on the subject's user
// row, best-effort: the code was already consumed.
func (s *CodeService) flagUser(subject string, activate bool) {
	user, err := s.users.ByEmail(subject)
	if err != nil || user == nil {
		return
	}
	if activate {
		err = s.users.Activate(user.ID)
	} else {
		err = s.users.MarkEmailVerified(user.ID)
	}
	if err != nil {
		fmt.Printf("[CodeService] Warning: failed to flag user %s verified: %v\n", user.ID, err)
	}
}

// Status reports the state of the latest code without mutating anything.
func (s *CodeService) Status(subject, purpose string) (*models.CodeStatus, error) {
	if !models.ValidPurpose(purpose) {
		return nil, newError(ErrInvalidPurpose, "Unknown code purpose: "+purpose)
	}

	rec, err := s.codes.Latest(subject, purpose)
	if err != nil {
		return nil, internalError(err)
	}
	if rec == nil {
		return &models.CodeStatus{}, nil
	}

	remaining := rec.MaxAttempts - rec.Attempts
	if remaining < 0 {
		remaining = 0
	}
	expiresAt := rec.ExpiresAt
	return &models.CodeStatus{
		Exists:            true,
		Usable:            !rec.IsUsed && s.now().Before(rec.ExpiresAt) && rec.Attempts < rec.MaxAttempts,
		ExpiresAt:         &expiresAt,
		AttemptsRemaining: remaining,
	}, nil
}

// Sweep deletes used and expired rows. Wired to a ticker in main.
func (s *CodeService) Sweep() error {
	return s.codes.DeleteStale(s.now())
}
