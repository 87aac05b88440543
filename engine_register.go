package phoneverify

import "context"

// Register validates phone, confirms with the gateway that the carrier can
// receive messages, records key_<phone>, issues an OTP and delivers it.
//
// A failure after key_<phone> was written leaves that record in place. The
// returned result echoes the OTP.
func (e *Engine) Register(ctx context.Context, phone string) (*RegisterResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res, err := e.flows.Register(ctx, phone)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{
		Phone:    res.Phone,
		OTP:      res.OTP,
		Delivery: receiptOf(res.Delivery),
	}, nil
}

// IssueOTP overwrites otp_<phone> with a fresh code and returns it. It does not
// check registration and sends nothing.
func (e *Engine) IssueOTP(ctx context.Context, phone string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}
	return e.flows.IssueOTP(ctx, phone)
}

func receiptOf(v any) *DeliveryReceipt {
	receipt, _ := v.(*DeliveryReceipt)
	return receipt
}

