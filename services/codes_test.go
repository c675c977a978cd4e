package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevispass/sevispass-backend/models"
)

const subject = "citizen@example.com"

type codeFixture struct {
	svc      *CodeService
	store    *fakeCodeStore
	users    *fakeUserStore
	notifier *fakeNotifier
	clock    time.Time
}

func newCodeFixture(t *testing.T) *codeFixture {
	t.Helper()
	f := &codeFixture{
		clock:    time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local),
		users:    &fakeUserStore{},
		notifier: &fakeNotifier{},
	}
	now := func() time.Time { return f.clock }
	f.store = newFakeCodeStore(now)
	f.svc = NewCodeService(f.store, f.users, f.notifier, false)
	f.svc.now = now
	return f
}

func (f *codeFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func TestIssueStoresAndDispatchesCode(t *testing.T) {
	f := newCodeFixture(t)

	code, err := f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)

	assert.Regexp(t, `^\d{6}$`, code.Code)
	assert.Equal(t, f.clock.Add(10*time.Minute), code.ExpiresAt)
	assert.Equal(t, 5, code.MaxAttempts)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, subject, f.notifier.sent[0].to)
	assert.Equal(t, code.Code, f.notifier.sent[0].code)
}

func TestIssueActivationUsesLongTTL(t *testing.T) {
	f := newCodeFixture(t)

	code, err := f.svc.Issue(subject, models.PurposeActivation)
	require.NoError(t, err)

	assert.Equal(t, f.clock.Add(24*time.Hour), code.ExpiresAt)
}

func TestIssueRejectsUnknownPurpose(t *testing.T) {
	f := newCodeFixture(t)

	_, err := f.svc.Issue(subject, "carrier-pigeon")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrInvalidPurpose, svcErr.Code)
}

func TestIssueCooldown(t *testing.T) {
	f := newCodeFixture(t)

	first, err := f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)

	// 60s later: still inside the 2 minute cooldown.
	f.advance(60 * time.Second)
	_, err = f.svc.Issue(subject, models.PurposeTwoFactor)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrRateLimited, svcErr.Code)
	assert.Equal(t, 60, svcErr.CooldownSeconds)

	// 121s after the first issue: cooldown elapsed, and the fresh 2FA code
	// invalidates the first one.
	f.advance(61 * time.Second)
	second, err := f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, f.store.byID(first.ID).IsUsed)
}

func TestIssueActivationCooldownIsFiveMinutes(t *testing.T) {
	f := newCodeFixture(t)

	_, err := f.svc.Issue(subject, models.PurposeActivation)
	require.NoError(t, err)

	f.advance(4 * time.Minute)
	_, err = f.svc.Issue(subject, models.PurposeActivation)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrRateLimited, svcErr.Code)

	f.advance(90 * time.Second)
	_, err = f.svc.Issue(subject, models.PurposeActivation)
	assert.NoError(t, err)
}

func TestIssueBypassSkipsTwoFactorInvalidation(t *testing.T) {
	f := newCodeFixture(t)
	f.svc.allowInsecureBypass = true

	first, err := f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)

	f.advance(3 * time.Minute)
	_, err = f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)

	assert.False(t, f.store.byID(first.ID).IsUsed)
}

func TestIssueDispatchFailureInvalidatesCode(t *testing.T) {
	f := newCodeFixture(t)
	f.notifier.fail = true

	_, err := f.svc.Issue(subject, models.PurposeRegistration)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrDispatchFailed, svcErr.Code)

	// The stored row must never be acceptable: the subject was not notified.
	require.Len(t, f.store.rows, 1)
	assert.True(t, f.store.rows[0].IsUsed)

	_, err = f.svc.Verify(subject, models.PurposeRegistration, f.store.rows[0].Code)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrCodeUsed, svcErr.Code)
}

func TestVerifyConsumesExactlyOnce(t *testing.T) {
	f := newCodeFixture(t)

	code, err := f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)

	rec, err := f.svc.Verify(subject, models.PurposeTwoFactor, code.Code)
	require.NoError(t, err)
	assert.Equal(t, code.ID, rec.ID)

	_, err = f.svc.Verify(subject, models.PurposeTwoFactor, code.Code)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrCodeUsed, svcErr.Code)
}

func TestVerifyNoCode(t *testing.T) {
	f := newCodeFixture(t)

	_, err := f.svc.Verify(subject, models.PurposeTwoFactor, "123456")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrNoCodeFound, svcErr.Code)
}

func TestVerifyMalformedCode(t *testing.T) {
	f := newCodeFixture(t)

	_, err := f.svc.Verify(subject, models.PurposeTwoFactor, "12345a")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrInvalidCode, svcErr.Code)
}

func TestVerifyExpiredCodeIsInvalidated(t *testing.T) {
	f := newCodeFixture(t)

	code, err := f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)

	f.advance(11 * time.Minute)
	_, err = f.svc.Verify(subject, models.PurposeTwoFactor, code.Code)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrCodeExpired, svcErr.Code)
	assert.True(t, f.store.byID(code.ID).IsUsed)
}

func TestVerifyWrongCodeBurnsOneAttempt(t *testing.T) {
	f := newCodeFixture(t)

	code, err := f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)

	// Four wrong submissions leave the code valid for a fifth, correct one.
	for i := 1; i <= 4; i++ {
		_, err := f.svc.Verify(subject, models.PurposeTwoFactor, "000001")
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, ErrInvalidCode, svcErr.Code)
		assert.Equal(t, 5-i, svcErr.AttemptsRemaining)
	}

	_, err = f.svc.Verify(subject, models.PurposeTwoFactor, code.Code)
	assert.NoError(t, err)
}

func TestVerifyAttemptBudgetExhausted(t *testing.T) {
	f := newCodeFixture(t)

	code, err := f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, _ = f.svc.Verify(subject, models.PurposeTwoFactor, "000001")
	}

	// Even the correct code is now permanently unusable.
	_, err = f.svc.Verify(subject, models.PurposeTwoFactor, code.Code)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrTooManyAttempts, svcErr.Code)
	assert.True(t, f.store.byID(code.ID).IsUsed)
}

func TestVerifyRegistrationMarksEmailVerified(t *testing.T) {
	f := newCodeFixture(t)
	user := f.users.add(models.User{Email: subject, IsActive: true})

	code, err := f.svc.Issue(subject, models.PurposeRegistration)
	require.NoError(t, err)

	_, err = f.svc.Verify(subject, models.PurposeRegistration, code.Code)
	require.NoError(t, err)

	updated, _ := f.users.ByID(user.ID)
	assert.True(t, updated.IsEmailVerified)
}

func TestVerifyActivationActivatesAccount(t *testing.T) {
	f := newCodeFixture(t)
	user := f.users.add(models.User{Email: subject, IsActive: false})

	code, err := f.svc.Issue(subject, models.PurposeActivation)
	require.NoError(t, err)

	_, err = f.svc.Verify(subject, models.PurposeActivation, code.Code)
	require.NoError(t, err)

	updated, _ := f.users.ByID(user.ID)
	assert.True(t, updated.IsEmailVerified)
	assert.True(t, updated.IsActive)
}

func TestStatusDoesNotMutate(t *testing.T) {
	f := newCodeFixture(t)

	code, err := f.svc.Issue(subject, models.PurposeRegistration)
	require.NoError(t, err)

	status, err := f.svc.Status(subject, models.PurposeRegistration)
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.True(t, status.Usable)
	assert.Equal(t, 5, status.AttemptsRemaining)

	// Inspection leaves the code consumable.
	_, err = f.svc.Verify(subject, models.PurposeRegistration, code.Code)
	assert.NoError(t, err)
}

func TestStatusMissingCode(t *testing.T) {
	f := newCodeFixture(t)

	status, err := f.svc.Status(subject, models.PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, status.Exists)
	assert.False(t, status.Usable)
}

func TestSweepDeletesUsedAndExpired(t *testing.T) {
	f := newCodeFixture(t)

	used, err := f.svc.Issue(subject, models.PurposeTwoFactor)
	require.NoError(t, err)
	_, err = f.svc.Verify(subject, models.PurposeTwoFactor, used.Code)
	require.NoError(t, err)

	f.advance(3 * time.Minute)
	expired, err := f.svc.Issue(subject, models.PurposeRegistration)
	require.NoError(t, err)

	f.advance(3 * time.Minute)
	live, err := f.svc.Issue("other@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	// Advance past the second code's expiry but not the third's.
	f.clock = live.ExpiresAt.Add(-time.Minute)

	require.NoError(t, f.svc.Sweep())

	assert.Nil(t, f.store.byID(used.ID))
	assert.Nil(t, f.store.byID(expired.ID))
	assert.NotNil(t, f.store.byID(live.ID))
}
