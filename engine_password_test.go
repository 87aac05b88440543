package phoneverify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/phoneverify/password"
)

var testTicketSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSetPasswordNotRegistered(t *testing.T) {
	engine, mr, _ := newTestEngine(t)

	_, err := engine.SetPassword(context.Background(), SetPasswordRequest{
		Phone:      testPhone,
		Password:   "secret",
		RePassword: "secret",
	})
	if !errors.Is(err, ErrPhoneNotRegistered) || err.Error() != "phone number not found" {
		t.Fatalf("expected ErrPhoneNotRegistered, got %v", err)
	}
	if mr.Exists("pass_" + testPhone) {
		t.Fatal("password must not be stored for an unregistered phone")
	}
}

func TestSetPasswordValidation(t *testing.T) {
	engine, mr, _ := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, testPhone)

	cases := []struct {
		name string
		req  SetPasswordRequest
		want error
		msg  string
	}{
		{"empty phone", SetPasswordRequest{Password: "a", RePassword: "a"}, ErrInputValidationFailed, "invalid phone number"},
		{"invalid phone", SetPasswordRequest{Phone: "0211234567", Password: "a", RePassword: "a"}, ErrInvalidPhone, "Cannot send OTP to +0211234567. Invalid phone number"},
		{"missing password", SetPasswordRequest{Phone: testPhone, RePassword: "a"}, ErrPasswordMissing, "input your password"},
		{"missing confirmation", SetPasswordRequest{Phone: testPhone, Password: "a"}, ErrPasswordMissing, "input your password"},
		{"mismatch", SetPasswordRequest{Phone: testPhone, Password: "a", RePassword: "b"}, ErrPasswordMismatch, "password did not match"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.SetPassword(ctx, tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if err.Error() != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, err.Error())
			}
		})
	}

	if mr.Exists("pass_" + testPhone) {
		t.Fatal("failed requests must not write a password")
	}
	if got := engine.MetricsSnapshot().Counters[MetricPasswordSetMismatch]; got != 1 {
		t.Fatalf("expected mismatch counter 1, got %d", got)
	}
}

func TestSetPasswordStoresHashWithoutOTP(t *testing.T) {
	engine, mr, _ := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, testPhone)

	res, err := engine.SetPassword(ctx, SetPasswordRequest{
		Phone:      testPhone,
		Password:   "hunter2",
		RePassword: "hunter2",
	})
	if err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if res.Phone != testPhone || res.PasswordHash != "plain$hunter2" {
		t.Fatalf("unexpected result %+v", res)
	}
	if got, _ := mr.Get("pass_" + testPhone); got != res.PasswordHash {
		t.Fatalf("expected stored hash %q, got %q", res.PasswordHash, got)
	}

	// a second call overwrites
	res, err = engine.SetPassword(ctx, SetPasswordRequest{Phone: testPhone, Password: "next", RePassword: "next"})
	if err != nil {
		t.Fatalf("second SetPassword failed: %v", err)
	}
	if got, _ := mr.Get("pass_" + testPhone); got != "plain$next" {
		t.Fatalf("expected overwritten hash, got %q", got)
	}
}

func TestSetPasswordDefaultBcrypt(t *testing.T) {
	mr, rdb := newTestRedis(t)
	cfg := DefaultConfig()
	cfg.Password.BcryptCost = 4

	engine, err := New().WithConfig(cfg).WithRedis(rdb).WithGateway(&fakeGateway{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	mustRegister(t, engine, testPhone)
	res, err := engine.SetPassword(ctx, SetPasswordRequest{Phone: testPhone, Password: "hunter2", RePassword: "hunter2"})
	if err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if !strings.HasPrefix(res.PasswordHash, "$2a$04$") {
		t.Fatalf("expected bcrypt hash, got %q", res.PasswordHash)
	}
	stored, _ := mr.Get("pass_" + testPhone)
	verifier, err := password.NewBcrypt(4)
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}
	ok, err := verifier.Verify("hunter2", stored)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestTicketGatesSetPassword(t *testing.T) {
	engine, mr, _ := newTestEngine(t, withConfig(func(c *Config) {
		c.Ticket.Enabled = true
		c.Ticket.Secret = testTicketSecret
		c.Ticket.TTL = time.Minute
	}))
	ctx := context.Background()
	reg := mustRegister(t, engine, testPhone)
	other := "085612345678"
	mustRegister(t, engine, other)

	req := SetPasswordRequest{Phone: testPhone, Password: "pw", RePassword: "pw"}
	if _, err := engine.SetPassword(ctx, req); !errors.Is(err, ErrTicketInvalid) {
		t.Fatalf("expected ErrTicketInvalid without ticket, got %v", err)
	}

	confirmed, err := engine.ConfirmOTP(ctx, ConfirmRequest{Phone: testPhone, OTP: reg.OTP})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Ticket == "" {
		t.Fatal("expected confirm to return a ticket")
	}

	foreign := SetPasswordRequest{Phone: other, Password: "pw", RePassword: "pw", Ticket: confirmed.Ticket}
	if _, err := engine.SetPassword(ctx, foreign); !errors.Is(err, ErrTicketInvalid) {
		t.Fatalf("expected ticket bound to another phone to fail, got %v", err)
	}
	if mr.Exists("pass_" + other) {
		t.Fatal("rejected ticket must not write a password")
	}

	req.Ticket = confirmed.Ticket
	if _, err := engine.SetPassword(ctx, req); err != nil {
		t.Fatalf("SetPassword with ticket failed: %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricTicketRejected]; got != 2 {
		t.Fatalf("expected 2 ticket rejections, got %d", got)
	}
}
