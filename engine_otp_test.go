package phoneverify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestConfirmOTPReplayable(t *testing.T) {
	engine, mr, _ := newTestEngine(t)
	ctx := context.Background()

	reg := mustRegister(t, engine, testPhone)

	for i := 0; i < 3; i++ {
		res, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: reg.OTP})
		if err != nil {
			t.Fatalf("confirm %d failed: %v", i, err)
		}
		if res.Phone != testPhone || res.OTP != reg.OTP || res.Resent || res.Ticket != "" {
			t.Fatalf("unexpected confirm result %+v", res)
		}
	}
	if !mr.Exists("otp_" + testPhone) {
		t.Fatal("confirm must not consume the challenge by default")
	}

	_, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: "0000"})
	if !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("expected ErrOtpMismatch, got %v", err)
	}
	var diag *DiagnosticError
	if !errors.As(err, &diag) || diag.Message != "invalid OTP" || diag.Echo["otp"] != "0000" {
		t.Fatalf("expected mismatch to echo submitted code only, got %+v", diag)
	}
}

func TestConfirmOTPNotRegistered(t *testing.T) {
	engine, mr, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: "1234"})
	var diag *DiagnosticError
	if !errors.As(err, &diag) || !errors.Is(err, ErrPhoneNotRegistered) {
		t.Fatalf("expected ErrPhoneNotRegistered, got %v", err)
	}
	if diag.Message != "Phone number not found" || diag.Echo["phone"] != nil {
		t.Fatalf("unexpected diagnostic %+v", diag)
	}

	// a registration record holding another value does not count
	if err := mr.Set("key_"+testPhone, "0899"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	_, err = engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: "1234"})
	if !errors.As(err, &diag) || diag.Echo["phone"] != "0899" {
		t.Fatalf("expected mismatched registration echoed, got %v", err)
	}
}

func TestConfirmOTPMissingInputAndMissingChallenge(t *testing.T) {
	engine, mr, _ := newTestEngine(t)
	ctx := context.Background()

	if err := mr.Set("key_"+testPhone, testPhone); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone})
	if !errors.Is(err, ErrOtpMissingInput) || err.Error() != "OTP not found" {
		t.Fatalf("expected ErrOtpMissingInput, got %v", err)
	}

	_, err = engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: "1234"})
	if !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("expected ErrOtpMismatch without a live challenge, got %v", err)
	}
}

func TestResendSupersedesOldCode(t *testing.T) {
	engine, _, gw := newTestEngine(t)
	ctx := context.Background()

	reg := mustRegister(t, engine, testPhone)

	var resent *ConfirmResult
	for {
		res, err := engine.ResendOTP(ctx, testPhone)
		if err != nil {
			t.Fatalf("resend failed: %v", err)
		}
		if !res.Resent || res.Delivery == nil {
			t.Fatalf("unexpected resend result %+v", res)
		}
		if res.OTP != reg.OTP {
			resent = res
			break
		}
	}

	if _, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: reg.OTP}); !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("expected old code to be rejected after resend, got %v", err)
	}
	if _, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: resent.OTP}); err != nil {
		t.Fatalf("expected new code to confirm, got %v", err)
	}
	if len(gw.messages()) < 2 {
		t.Fatal("expected resend to deliver a message")
	}
}

func TestResendIgnoresRegistration(t *testing.T) {
	engine, mr, _ := newTestEngine(t)

	res, err := engine.ResendOTP(context.Background(), testPhone)
	if err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if mr.Exists("key_" + testPhone) {
		t.Fatal("resend must not create a registration")
	}
	if got, _ := mr.Get("otp_" + testPhone); got != res.OTP {
		t.Fatalf("expected otp_ record %q, got %q", res.OTP, got)
	}

	if _, err := engine.ResendOTP(context.Background(), "12345"); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestConsumeOnConfirmRejectsReplay(t *testing.T) {
	engine, mr, _ := newTestEngine(t, withConfig(func(c *Config) {
		c.OTP.ConsumeOnConfirm = true
	}))
	ctx := context.Background()

	reg := mustRegister(t, engine, testPhone)

	if _, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: "0000"}); !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if !mr.Exists("otp_" + testPhone) {
		t.Fatal("a wrong guess must not consume the challenge")
	}
	if _, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: reg.OTP}); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if _, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: reg.OTP}); !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("expected replay to fail, got %v", err)
	}
}

func TestResendRateLimit(t *testing.T) {
	engine, _, _ := newTestEngine(t, withConfig(func(c *Config) {
		c.Resend.MaxPerWindow = 2
		c.Resend.Window = time.Minute
	}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := engine.ResendOTP(ctx, testPhone); err != nil {
			t.Fatalf("resend %d failed: %v", i, err)
		}
	}
	if _, err := engine.ResendOTP(ctx, testPhone); !errors.Is(err, ErrResendRateLimited) {
		t.Fatalf("expected ErrResendRateLimited, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricOTPResendRateLimited]; got != 1 {
		t.Fatalf("expected rate limited counter 1, got %d", got)
	}
}

// A confirm racing a resend sees whichever code is stored at read time, so a
// superseded code may be rejected. Every outcome must still be one of success
// or ErrOtpMismatch.
func TestConfirmRacesResend(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	reg := mustRegister(t, engine, testPhone)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := engine.ResendOTP(ctx, testPhone); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			_, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: reg.OTP})
			if err != nil && !errors.Is(err, ErrOtpMismatch) {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected error under race: %v", err)
	}

	state, err := engine.State(ctx, testPhone)
	if err != nil || state != StatePending {
		t.Fatalf("expected pending state after race, got %v err=%v", state, err)
	}
}
