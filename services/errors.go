package services

// Machine-readable error codes returned alongside messages so callers can
// branch without parsing text.
const (
	ErrValidation     = "VALIDATION"
	ErrInvalidPurpose = "INVALID_PURPOSE"
	ErrRateLimited    = "RATE_LIMITED"
	ErrDispatchFailed = "DISPATCH_FAILED"

	ErrNoCodeFound     = "NO_CODE_FOUND"
	ErrCodeUsed        = "CODE_USED"
	ErrCodeExpired     = "CODE_EXPIRED"
	ErrTooManyAttempts = "TOO_MANY_ATTEMPTS"
	ErrInvalidCode     = "INVALID_CODE"

	ErrWeekendUnavailable = "WEEKEND_UNAVAILABLE"
	ErrLocationNotFound   = "LOCATION_NOT_FOUND"
	ErrUserNotFound       = "USER_NOT_FOUND"
	ErrNotVerified        = "NOT_VERIFIED"
	ErrAlreadyBooked      = "ALREADY_BOOKED"
	ErrInvalidDate        = "INVALID_DATE"
	ErrInvalidSlot        = "INVALID_SLOT"
	ErrSlotFull           = "SLOT_FULL"

	ErrNoAppointment             = "NO_APPOINTMENT"
	ErrNoAppointmentToReschedule = "NO_APPOINTMENT_TO_RESCHEDULE"
	ErrTooLateToCancel           = "TOO_LATE_TO_CANCEL"

	ErrInternal = "INTERNAL"
)

// Error is the failure type every service method returns. CooldownSeconds is
// set for RATE_LIMITED, AttemptsRemaining for INVALID_CODE.
type Error struct {
	Code              string
	Message           string
	CooldownSeconds   int
	AttemptsRemaining int
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func internalError(err error) *Error {
	return &Error{Code: ErrInternal, Message: "Internal server error: " + err.Error()}
}
