package phoneverify

import (
	"context"

	"github.com/MrEthical07/phoneverify/internal/flows"
)

// ConfirmOTP checks req.OTP against the live challenge for req.Phone.
//
// With req.Resend set it instead issues and delivers a new code regardless of
// prior state; the old code stops matching immediately. A successful confirm
// leaves the challenge in place unless OTP.ConsumeOnConfirm is enabled, so the
// same code can be confirmed again until it is overwritten.
func (e *Engine) ConfirmOTP(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res, err := e.flows.ConfirmOTP(ctx, flows.ConfirmInput{
		Phone:  req.Phone,
		OTP:    req.OTP,
		Resend: req.Resend,
	})
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{
		Phone:    res.Phone,
		OTP:      res.OTP,
		Resent:   res.Resent,
		Delivery: receiptOf(res.Delivery),
		Ticket:   res.Ticket,
	}, nil
}

// ResendOTP is ConfirmOTP with Resend set.
func (e *Engine) ResendOTP(ctx context.Context, phone string) (*ConfirmResult, error) {
	return e.ConfirmOTP(ctx, ConfirmRequest{Phone: phone, Resend: true})
}
