package flows

import (
	"context"
	"fmt"
)

// Deps groups flow dependency sets. The root engine builds this once and
// delegates request methods to the matching flow implementation.
type Deps struct {
	Verification VerificationDeps
}

type VerificationErrors struct {
	EngineNotReady    error
	InputValidation   error
	InvalidPhone      error
	Undeliverable     error
	NotRegistered     error
	OtpMissing        error
	OtpMismatch       error
	PasswordMissing   error
	PasswordMismatch  error
	StoreUnavailable  error
	DeliveryFailed    error
	ResendRateLimited error
	TicketInvalid     error
}

type VerificationMetrics struct {
	RegisterSuccess       int
	RegisterFailure       int
	RegisterInvalidPhone  int
	RegisterUndeliverable int
	OTPIssued             int
	OTPResend             int
	OTPResendRateLimited  int
	ConfirmSuccess        int
	ConfirmMismatch       int
	ConfirmNotRegistered  int
	PasswordSetSuccess    int
	PasswordSetFailure    int
	PasswordSetMismatch   int
	TicketRejected        int
	DeliverySuccess       int
	DeliveryFailure       int
	StoreFailure          int
}

type VerificationEvents struct {
	Register    string
	OTPIssue    string
	OTPResend   string
	OTPConfirm  string
	PasswordSet string
}

// VerificationDeps wires the verification state machine. Optional hardening
// hooks (ConsumeChallenge, CheckResend, IssueTicket, VerifyTicket) are nil
// when the matching feature is disabled.
type VerificationDeps struct {
	ValidatePhone func(string) (bool, string, error)
	LookupCarrier func(context.Context, string) (*int, error)
	// Deliver sends code to phone and returns the provider receipt.
	Deliver      func(context.Context, string, string) (any, error)
	GenerateCode func() (string, error)
	HashPassword func(string) (string, error)

	SaveRegistration func(context.Context, string) error
	Registration     func(context.Context, string) (string, error)
	SaveChallenge    func(context.Context, string, string) error
	Challenge        func(context.Context, string) (string, error)
	ConsumeChallenge func(context.Context, string, string) error
	SavePasswordHash func(context.Context, string, string) error

	IsNotFound          func(error) bool
	IsChallengeMismatch func(error) bool
	MapStoreError       func(error) error

	CheckResend   func(context.Context, string) error
	IsRateLimited func(error) bool

	IssueTicket  func(string) (string, error)
	VerifyTicket func(string, string) error

	NewDiagnostic func(error, string, map[string]any) error
	MetricInc     func(int)
	EmitAudit     func(context.Context, string, bool, string, error, func() map[string]string)

	Metrics VerificationMetrics
	Events  VerificationEvents
	Errors  VerificationErrors
}

func (d VerificationDeps) ready() bool {
	return d.ValidatePhone != nil &&
		d.LookupCarrier != nil &&
		d.Deliver != nil &&
		d.GenerateCode != nil &&
		d.HashPassword != nil &&
		d.SaveRegistration != nil &&
		d.Registration != nil &&
		d.SaveChallenge != nil &&
		d.Challenge != nil &&
		d.SavePasswordHash != nil
}

func normalizeVerificationDeps(deps *VerificationDeps) {
	if deps.IsNotFound == nil {
		deps.IsNotFound = func(error) bool { return false }
	}
	if deps.IsChallengeMismatch == nil {
		deps.IsChallengeMismatch = func(error) bool { return false }
	}
	if deps.IsRateLimited == nil {
		deps.IsRateLimited = func(error) bool { return false }
	}
	if deps.MapStoreError == nil {
		storeErr := deps.Errors.StoreUnavailable
		deps.MapStoreError = func(err error) error { return fmt.Errorf("%w: %v", storeErr, err) }
	}
	if deps.NewDiagnostic == nil {
		deps.NewDiagnostic = func(kind error, _ string, _ map[string]any) error { return kind }
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
}
