package phoneverify

import "errors"

var (
	// ErrInputValidationFailed reports a request field rejected before the
	// engine runs (non-numeric phone, malformed otp).
	ErrInputValidationFailed = errors.New("input validation failed")
	// ErrInvalidPhone reports a number the phone validator does not accept.
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrUndeliverableNumber reports a carrier lookup that returned an error code.
	ErrUndeliverableNumber = errors.New("phone number cannot receive messages")
	// ErrPhoneNotRegistered reports a missing or mismatched registration record.
	ErrPhoneNotRegistered = errors.New("phone number not registered")
	// ErrOtpMissingInput reports a confirm request without an otp.
	ErrOtpMissingInput = errors.New("otp not supplied")
	// ErrOtpMismatch reports an otp that differs from the live challenge, or no challenge at all.
	ErrOtpMismatch = errors.New("invalid otp")
	// ErrPasswordMissing reports an empty password or confirmation field.
	ErrPasswordMissing = errors.New("password missing")
	// ErrPasswordMismatch reports password and confirmation that differ.
	ErrPasswordMismatch = errors.New("password did not match")
	// ErrStoreUnavailable wraps any Redis failure.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrDeliveryFailed wraps carrier lookup and send failures.
	ErrDeliveryFailed = errors.New("message delivery failed")
	// ErrResendRateLimited is returned when the optional resend throttle is exhausted.
	ErrResendRateLimited = errors.New("otp resend rate limited")
	// ErrTicketInvalid is returned by SetPassword when tickets are enabled and the
	// supplied ticket is missing, expired or bound to another phone.
	ErrTicketInvalid = errors.New("confirmation ticket invalid")

	// ErrEngineNotReady is returned by a nil or zero Engine that was not
	// produced by Builder.Build.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// DiagnosticError is a terminal failure carrying the client-facing message and
// the values echoed back next to it. It unwraps to one of the Err* sentinels.
type DiagnosticError struct {
	Err     error
	Message string
	// Echo holds extra response fields; a nil value is rendered as JSON null.
	Echo map[string]any
}

func (e *DiagnosticError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "phoneverify: unknown failure"
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}

func diagnose(kind error, message string, echo map[string]any) error {
	return &DiagnosticError{Err: kind, Message: message, Echo: echo}
}
