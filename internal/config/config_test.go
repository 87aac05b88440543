package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrEthical07/phoneverify"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MESSAGING_PROVIDER", "console")

	cfg, err := load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 3000 || cfg.ListenAddr() != ":3000" {
		t.Errorf("AppPort = %d, want 3000", cfg.AppPort)
	}
	if cfg.RedisAddr() != "127.0.0.1:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr())
	}
	if cfg.MessagingChannel != "whatsapp" {
		t.Errorf("MessagingChannel = %q, want whatsapp", cfg.MessagingChannel)
	}
	if cfg.OTPTTL != 0 || cfg.TicketTTL != 10*time.Minute {
		t.Errorf("unexpected ttl defaults otp=%v ticket=%v", cfg.OTPTTL, cfg.TicketTTL)
	}

	engine := cfg.Engine()
	if err := engine.Validate(); err != nil {
		t.Fatalf("default engine config invalid: %v", err)
	}
	if engine.Ticket.Enabled || engine.OTP.ConsumeOnConfirm || engine.Resend.MaxPerWindow != 0 {
		t.Fatalf("defaults must leave hardening off, got %+v", engine)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("TWILIO_SID", "AC1")
	t.Setenv("TWILIO_AUTH", "tok")
	t.Setenv("TWILIO_NO", "+14155238886")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("RESEND_MAX_PER_WINDOW", "3")
	t.Setenv("RESEND_WINDOW", "10m")
	t.Setenv("TICKET_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("KEY_NAMESPACE", "pv")

	cfg, err := load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 8080 || cfg.RedisAddr() != "redis:6380" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}

	engine := cfg.Engine()
	if engine.OTP.TTL != 5*time.Minute || engine.Resend.MaxPerWindow != 3 || engine.Resend.Window != 10*time.Minute {
		t.Fatalf("unexpected engine config %+v", engine)
	}
	if !engine.Ticket.Enabled || engine.Messaging.From != "+14155238886" || engine.Records.Namespace != "pv" {
		t.Fatalf("unexpected engine config %+v", engine)
	}
	if err := engine.Validate(); err != nil {
		t.Fatalf("engine config invalid: %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "MESSAGING_PROVIDER=smslocal\nSMS_LOCAL_API_KEY=key\nSMS_LOCAL_SENDER=PVOTP\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MessagingProvider != ProviderSMSLocal || cfg.SMSLocalAPIKey != "key" {
		t.Fatalf("expected values from .env, got %+v", cfg)
	}
	if engine := cfg.Engine(); engine.Messaging.Channel != phoneverify.ChannelSMS || engine.Messaging.From != "PVOTP" {
		t.Fatalf("smslocal must force the sms channel, got %+v", engine.Messaging)
	}
}

func TestLoadMissingEnvFileIsFine(t *testing.T) {
	t.Setenv("MESSAGING_PROVIDER", "console")

	if _, err := load(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env must be ignored, got %v", err)
	}
}

func TestLoadUnreadableEnvFile(t *testing.T) {
	t.Setenv("MESSAGING_PROVIDER", "console")

	// A directory exists but cannot be read as a file.
	if _, err := load(t.TempDir()); err == nil {
		t.Fatal("expected an error for an unreadable .env")
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"twilio without credentials": {"MESSAGING_PROVIDER": "twilio"},
		"smslocal without key":       {"MESSAGING_PROVIDER": "smslocal"},
		"console in production":      {"MESSAGING_PROVIDER": "console", "APP_ENV": "production"},
		"unknown provider":           {"MESSAGING_PROVIDER": "carrier-pigeon"},
		"bad port":                   {"MESSAGING_PROVIDER": "console", "APP_PORT": "0"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := load(""); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}
