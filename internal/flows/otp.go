package flows

import (
	"context"
	"crypto/subtle"
	"fmt"
)

type ConfirmInput struct {
	Phone  string
	OTP    string
	Resend bool
}

type ConfirmResult struct {
	Phone    string
	OTP      string
	Resent   bool
	Delivery any
	Ticket   string
}

// RunIssueOTP writes a fresh code to otp_<phone>, overwriting any live one.
func RunIssueOTP(ctx context.Context, phone string, deps VerificationDeps) (string, error) {
	normalizeVerificationDeps(&deps)
	if deps.GenerateCode == nil || deps.SaveChallenge == nil {
		return "", deps.Errors.EngineNotReady
	}

	code, err := deps.GenerateCode()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	if err := deps.SaveChallenge(ctx, phone, code); err != nil {
		deps.MetricInc(deps.Metrics.StoreFailure)
		mapped := deps.MapStoreError(err)
		deps.EmitAudit(ctx, deps.Events.OTPIssue, false, phone, mapped, nil)
		return "", mapped
	}

	deps.MetricInc(deps.Metrics.OTPIssued)
	deps.EmitAudit(ctx, deps.Events.OTPIssue, true, phone, nil, nil)
	return code, nil
}

// RunConfirmOTP either resends a new code or checks the submitted one against
// otp_<phone>. Without ConsumeChallenge the check mutates nothing and can be
// repeated with the same code.
func RunConfirmOTP(ctx context.Context, req ConfirmInput, deps VerificationDeps) (*ConfirmResult, error) {
	normalizeVerificationDeps(&deps)
	if !deps.ready() {
		return nil, deps.Errors.EngineNotReady
	}

	if req.Resend {
		return runResend(ctx, req.Phone, deps)
	}

	phone := req.Phone
	if phone == "" {
		err := deps.NewDiagnostic(deps.Errors.InputValidation, msgMissingPhone, nil)
		deps.EmitAudit(ctx, deps.Events.OTPConfirm, false, "", err, nil)
		return nil, err
	}
	if _, err := checkPhone(phone, deps); err != nil {
		deps.EmitAudit(ctx, deps.Events.OTPConfirm, false, phone, err, nil)
		return nil, err
	}

	registered, err := registration(ctx, phone, deps)
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.OTPConfirm, false, phone, err, nil)
		return nil, err
	}
	if registered == nil || *registered != phone {
		deps.MetricInc(deps.Metrics.ConfirmNotRegistered)
		notFound := deps.NewDiagnostic(deps.Errors.NotRegistered, msgPhoneNotFound, map[string]any{
			"phone": nullable(registered),
		})
		deps.EmitAudit(ctx, deps.Events.OTPConfirm, false, phone, notFound, nil)
		return nil, notFound
	}

	if req.OTP == "" {
		missing := deps.NewDiagnostic(deps.Errors.OtpMissing, msgOtpMissing, map[string]any{
			"otp": *registered,
		})
		deps.EmitAudit(ctx, deps.Events.OTPConfirm, false, phone, missing, nil)
		return nil, missing
	}

	if err := matchChallenge(ctx, phone, req.OTP, deps); err != nil {
		deps.EmitAudit(ctx, deps.Events.OTPConfirm, false, phone, err, nil)
		return nil, err
	}

	result := &ConfirmResult{
		Phone: phone,
		OTP:   req.OTP,
	}
	// A ticket failure must leave otp_<phone> in place.
	if deps.IssueTicket != nil {
		ticket, err := deps.IssueTicket(phone)
		if err != nil {
			return nil, fmt.Errorf("issue ticket: %w", err)
		}
		result.Ticket = ticket
	}
	if err := consumeChallenge(ctx, phone, req.OTP, deps); err != nil {
		deps.EmitAudit(ctx, deps.Events.OTPConfirm, false, phone, err, stepMetadata("consume"))
		return nil, err
	}

	deps.MetricInc(deps.Metrics.ConfirmSuccess)
	deps.EmitAudit(ctx, deps.Events.OTPConfirm, true, phone, nil, func() map[string]string {
		return map[string]string{
			"consumed": fmt.Sprint(deps.ConsumeChallenge != nil),
		}
	})
	return result, nil
}

func runResend(ctx context.Context, phone string, deps VerificationDeps) (*ConfirmResult, error) {
	if _, err := checkPhone(phone, deps); err != nil {
		deps.EmitAudit(ctx, deps.Events.OTPResend, false, phone, err, nil)
		return nil, err
	}

	if deps.CheckResend != nil {
		if err := deps.CheckResend(ctx, phone); err != nil {
			if deps.IsRateLimited(err) {
				deps.MetricInc(deps.Metrics.OTPResendRateLimited)
				limited := deps.NewDiagnostic(deps.Errors.ResendRateLimited, msgResendLimited, nil)
				deps.EmitAudit(ctx, deps.Events.OTPResend, false, phone, limited, nil)
				return nil, limited
			}
			deps.MetricInc(deps.Metrics.StoreFailure)
			mapped := deps.MapStoreError(err)
			deps.EmitAudit(ctx, deps.Events.OTPResend, false, phone, mapped, stepMetadata("resend_limiter"))
			return nil, mapped
		}
	}

	code, err := RunIssueOTP(ctx, phone, deps)
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.OTPResend, false, phone, err, stepMetadata("issue_otp"))
		return nil, err
	}

	receipt, err := deliver(ctx, phone, code, deps)
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.OTPResend, false, phone, err, stepMetadata("deliver"))
		return nil, err
	}

	deps.MetricInc(deps.Metrics.OTPResend)
	deps.EmitAudit(ctx, deps.Events.OTPResend, true, phone, nil, nil)

	return &ConfirmResult{
		Phone:    phone,
		OTP:      code,
		Resent:   true,
		Delivery: receipt,
	}, nil
}

func otpMismatch(otp string, deps VerificationDeps) error {
	deps.MetricInc(deps.Metrics.ConfirmMismatch)
	return deps.NewDiagnostic(deps.Errors.OtpMismatch, msgOtpMismatch, map[string]any{
		"otp": otp,
	})
}

// matchChallenge is read-only; consumeChallenge performs the atomic delete.
func matchChallenge(ctx context.Context, phone, otp string, deps VerificationDeps) error {
	mismatch := func() error { return otpMismatch(otp, deps) }

	stored, err := deps.Challenge(ctx, phone)
	if err != nil {
		if deps.IsNotFound(err) {
			return mismatch()
		}
		deps.MetricInc(deps.Metrics.StoreFailure)
		return deps.MapStoreError(err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(otp)) != 1 {
		return mismatch()
	}
	return nil
}

// consumeChallenge deletes otp_<phone> when ConsumeChallenge is configured. A
// concurrent confirm that got there first surfaces as a mismatch.
func consumeChallenge(ctx context.Context, phone, otp string, deps VerificationDeps) error {
	if deps.ConsumeChallenge == nil {
		return nil
	}
	err := deps.ConsumeChallenge(ctx, phone, otp)
	switch {
	case err == nil:
		return nil
	case deps.IsNotFound(err), deps.IsChallengeMismatch(err):
		return otpMismatch(otp, deps)
	default:
		deps.MetricInc(deps.Metrics.StoreFailure)
		return deps.MapStoreError(err)
	}
}

// registration returns nil when key_<phone> is absent.
func registration(ctx context.Context, phone string, deps VerificationDeps) (*string, error) {
	value, err := deps.Registration(ctx, phone)
	if err != nil {
		if deps.IsNotFound(err) {
			return nil, nil
		}
		deps.MetricInc(deps.Metrics.StoreFailure)
		return nil, deps.MapStoreError(err)
	}
	return &value, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
