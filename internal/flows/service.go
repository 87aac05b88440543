package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Verification.ready()
}

func (s Service) Register(ctx context.Context, phone string) (*RegisterResult, error) {
	return RunRegister(ctx, phone, s.deps.Verification)
}

func (s Service) IssueOTP(ctx context.Context, phone string) (string, error) {
	return RunIssueOTP(ctx, phone, s.deps.Verification)
}

func (s Service) ConfirmOTP(ctx context.Context, req ConfirmInput) (*ConfirmResult, error) {
	return RunConfirmOTP(ctx, req, s.deps.Verification)
}

func (s Service) SetPassword(ctx context.Context, req SetPasswordInput) (*SetPasswordResult, error) {
	return RunSetPassword(ctx, req, s.deps.Verification)
}
