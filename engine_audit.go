package phoneverify

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventRegister    = "register"
	auditEventOTPIssue    = "otp_issue"
	auditEventOTPResend   = "otp_resend"
	auditEventOTPConfirm  = "otp_confirm"
	auditEventPasswordSet = "password_set"
)

// AuditErrorCode is the stable error label written into AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrInputValidation  AuditErrorCode = "input_validation"
	auditErrInvalidPhone     AuditErrorCode = "invalid_phone"
	auditErrUndeliverable    AuditErrorCode = "undeliverable_number"
	auditErrNotRegistered    AuditErrorCode = "phone_not_registered"
	auditErrOtpMissing       AuditErrorCode = "otp_missing"
	auditErrOtpMismatch      AuditErrorCode = "otp_mismatch"
	auditErrPasswordMissing  AuditErrorCode = "password_missing"
	auditErrPasswordMismatch AuditErrorCode = "password_mismatch"
	auditErrRateLimited      AuditErrorCode = "rate_limited"
	auditErrTicketInvalid    AuditErrorCode = "ticket_invalid"
	auditErrDeliveryFailed   AuditErrorCode = "delivery_failed"
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

// emitAudit never records OTP values or passwords; callers pass only the phone.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	phone string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Phone:     phone,
		RequestID: RequestIDFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInputValidationFailed):
		return auditErrInputValidation
	case errors.Is(err, ErrInvalidPhone):
		return auditErrInvalidPhone
	case errors.Is(err, ErrUndeliverableNumber):
		return auditErrUndeliverable
	case errors.Is(err, ErrPhoneNotRegistered):
		return auditErrNotRegistered
	case errors.Is(err, ErrOtpMissingInput):
		return auditErrOtpMissing
	case errors.Is(err, ErrOtpMismatch):
		return auditErrOtpMismatch
	case errors.Is(err, ErrPasswordMissing):
		return auditErrPasswordMissing
	case errors.Is(err, ErrPasswordMismatch):
		return auditErrPasswordMismatch
	case errors.Is(err, ErrResendRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrTicketInvalid):
		return auditErrTicketInvalid
	case errors.Is(err, ErrDeliveryFailed):
		return auditErrDeliveryFailed
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrEngineNotReady):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
