package phoneverify

import (
	"context"

	"github.com/MrEthical07/phoneverify/internal/flows"
)

// SetPassword hashes req.Password and stores it under pass_<phone>.
//
// Only the registration record is checked. Unless tickets are enabled, a caller
// that knows a registered number can set its password without an OTP.
func (e *Engine) SetPassword(ctx context.Context, req SetPasswordRequest) (*SetPasswordResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res, err := e.flows.SetPassword(ctx, flows.SetPasswordInput{
		Phone:      req.Phone,
		Password:   req.Password,
		RePassword: req.RePassword,
		Ticket:     req.Ticket,
	})
	if err != nil {
		return nil, err
	}
	return &SetPasswordResult{
		Phone:        res.Phone,
		PasswordHash: res.PasswordHash,
	}, nil
}
