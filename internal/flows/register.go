package flows

import (
	"context"
	"strconv"
)

type RegisterResult struct {
	Phone    string
	OTP      string
	Delivery any
}

// RunRegister validates phone, checks the carrier, writes key_<phone>, issues a
// challenge and delivers it. Earlier writes are not rolled back when a later
// step fails.
func RunRegister(ctx context.Context, phone string, deps VerificationDeps) (*RegisterResult, error) {
	normalizeVerificationDeps(&deps)
	if !deps.ready() {
		return nil, deps.Errors.EngineNotReady
	}

	if phone == "" {
		deps.MetricInc(deps.Metrics.RegisterFailure)
		err := deps.NewDiagnostic(deps.Errors.InputValidation, msgInputPhone, nil)
		deps.EmitAudit(ctx, deps.Events.Register, false, "", err, nil)
		return nil, err
	}

	operator, err := checkPhone(phone, deps)
	if err != nil {
		deps.MetricInc(deps.Metrics.RegisterInvalidPhone)
		deps.EmitAudit(ctx, deps.Events.Register, false, phone, err, nil)
		return nil, err
	}

	code, err := deps.LookupCarrier(ctx, phone)
	if err != nil {
		deps.MetricInc(deps.Metrics.DeliveryFailure)
		deps.MetricInc(deps.Metrics.RegisterFailure)
		wrapped := wrapDelivery(err, deps)
		deps.EmitAudit(ctx, deps.Events.Register, false, phone, wrapped, stepMetadata("carrier_lookup"))
		return nil, wrapped
	}
	if code != nil {
		deps.MetricInc(deps.Metrics.RegisterUndeliverable)
		undeliverable := deps.NewDiagnostic(deps.Errors.Undeliverable, msgInvalidPhone(phone), nil)
		deps.EmitAudit(ctx, deps.Events.Register, false, phone, undeliverable, func() map[string]string {
			return map[string]string{
				"carrier_error_code": strconv.Itoa(*code),
			}
		})
		return nil, undeliverable
	}

	if err := deps.SaveRegistration(ctx, phone); err != nil {
		deps.MetricInc(deps.Metrics.StoreFailure)
		deps.MetricInc(deps.Metrics.RegisterFailure)
		mapped := deps.MapStoreError(err)
		deps.EmitAudit(ctx, deps.Events.Register, false, phone, mapped, stepMetadata("save_registration"))
		return nil, mapped
	}

	otp, err := RunIssueOTP(ctx, phone, deps)
	if err != nil {
		deps.MetricInc(deps.Metrics.RegisterFailure)
		deps.EmitAudit(ctx, deps.Events.Register, false, phone, err, stepMetadata("issue_otp"))
		return nil, err
	}

	receipt, err := deliver(ctx, phone, otp, deps)
	if err != nil {
		deps.MetricInc(deps.Metrics.RegisterFailure)
		deps.EmitAudit(ctx, deps.Events.Register, false, phone, err, stepMetadata("deliver"))
		return nil, err
	}

	deps.MetricInc(deps.Metrics.RegisterSuccess)
	deps.EmitAudit(ctx, deps.Events.Register, true, phone, nil, func() map[string]string {
		return map[string]string{
			"operator": operator,
		}
	})

	return &RegisterResult{
		Phone:    phone,
		OTP:      otp,
		Delivery: receipt,
	}, nil
}

// checkPhone returns the operator name for a valid number or an InvalidPhone
// diagnostic.
func checkPhone(phone string, deps VerificationDeps) (string, error) {
	valid, operator, err := deps.ValidatePhone(phone)
	if err != nil || !valid {
		return "", deps.NewDiagnostic(deps.Errors.InvalidPhone, msgInvalidPhone(phone), nil)
	}
	return operator, nil
}

func deliver(ctx context.Context, phone, code string, deps VerificationDeps) (any, error) {
	receipt, err := deps.Deliver(ctx, phone, code)
	if err != nil {
		deps.MetricInc(deps.Metrics.DeliveryFailure)
		return nil, wrapDelivery(err, deps)
	}
	deps.MetricInc(deps.Metrics.DeliverySuccess)
	return receipt, nil
}

func wrapDelivery(err error, deps VerificationDeps) error {
	return deps.NewDiagnostic(deps.Errors.DeliveryFailed, err.Error(), nil)
}

func stepMetadata(step string) func() map[string]string {
	return func() map[string]string {
		return map[string]string{
			"step": step,
		}
	}
}
