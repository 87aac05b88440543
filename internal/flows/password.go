package flows

import (
	"context"
	"fmt"
)

type SetPasswordInput struct {
	Phone      string
	Password   string
	RePassword string
	Ticket     string
}

type SetPasswordResult struct {
	Phone        string
	PasswordHash string
}

// RunSetPassword commits a password hash for a registered phone. Only
// key_<phone> is checked; the OTP is not re-verified unless VerifyTicket is
// wired.
func RunSetPassword(ctx context.Context, req SetPasswordInput, deps VerificationDeps) (*SetPasswordResult, error) {
	normalizeVerificationDeps(&deps)
	if !deps.ready() {
		return nil, deps.Errors.EngineNotReady
	}

	fail := func(err error, metric int) (*SetPasswordResult, error) {
		deps.MetricInc(metric)
		deps.EmitAudit(ctx, deps.Events.PasswordSet, false, req.Phone, err, nil)
		return nil, err
	}

	phone := req.Phone
	if phone == "" {
		return fail(deps.NewDiagnostic(deps.Errors.InputValidation, msgMissingPhone, nil), deps.Metrics.PasswordSetFailure)
	}
	if _, err := checkPhone(phone, deps); err != nil {
		return fail(err, deps.Metrics.PasswordSetFailure)
	}

	registered, err := registration(ctx, phone, deps)
	if err != nil {
		return fail(err, deps.Metrics.PasswordSetFailure)
	}
	if registered == nil || *registered != phone {
		return fail(deps.NewDiagnostic(deps.Errors.NotRegistered, msgPasswordNoPhone, nil), deps.Metrics.PasswordSetFailure)
	}

	if req.Password == "" || req.RePassword == "" {
		return fail(deps.NewDiagnostic(deps.Errors.PasswordMissing, msgPasswordMissing, nil), deps.Metrics.PasswordSetFailure)
	}
	if req.Password != req.RePassword {
		return fail(deps.NewDiagnostic(deps.Errors.PasswordMismatch, msgPasswordMismatch, nil), deps.Metrics.PasswordSetMismatch)
	}

	if deps.VerifyTicket != nil {
		if req.Ticket == "" || deps.VerifyTicket(req.Ticket, phone) != nil {
			return fail(deps.NewDiagnostic(deps.Errors.TicketInvalid, msgTicketInvalid, nil), deps.Metrics.TicketRejected)
		}
	}

	hash, err := deps.HashPassword(req.Password)
	if err != nil {
		return fail(fmt.Errorf("hash password: %w", err), deps.Metrics.PasswordSetFailure)
	}

	if err := deps.SavePasswordHash(ctx, phone, hash); err != nil {
		deps.MetricInc(deps.Metrics.StoreFailure)
		return fail(deps.MapStoreError(err), deps.Metrics.PasswordSetFailure)
	}

	deps.MetricInc(deps.Metrics.PasswordSetSuccess)
	deps.EmitAudit(ctx, deps.Events.PasswordSet, true, phone, nil, nil)

	return &SetPasswordResult{
		Phone:        phone,
		PasswordHash: hash,
	}, nil
}
