package phoneverify

import (
	"errors"
	"strings"
	"time"
)

// Config is copied into the Engine at Build time and never mutated afterwards.
// The zero values of every hardening field reproduce the historical behaviour:
// no expiry, replayable confirmation, no resend throttle, no tickets.
type Config struct {
	OTP       OTPConfig
	Records   RecordsConfig
	Messaging MessagingConfig
	Password  PasswordConfig
	Ticket    TicketConfig
	Resend    ResendConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
OTP CONFIG
====================================
*/

type OTPConfig struct {
	// TTL expires otp_<phone>. Zero keeps the challenge until overwritten.
	TTL time.Duration
	// ConsumeOnConfirm deletes the challenge after a successful confirm so the
	// same code cannot be replayed.
	ConsumeOnConfirm bool
}

/*
====================================
RECORDS CONFIG
====================================
*/

type RecordsConfig struct {
	// Namespace prefixes every key as "<ns>:key_<phone>". Empty keeps the bare layout.
	Namespace       string
	RegistrationTTL time.Duration
}

/*
====================================
MESSAGING CONFIG
====================================
*/

type MessagingConfig struct {
	Channel Channel
	// From is the sender number handed to the gateway.
	From string
	// BodyTemplate must contain exactly one %s, replaced with the code.
	BodyTemplate string
}

// DefaultBodyTemplate is the Indonesian OTP notice sent to users.
const DefaultBodyTemplate = "Kode keamanan anda adalah %s. Jangan bagikan kode anda kepada siapapun."

/*
====================================
PASSWORD CONFIG
====================================
*/

type PasswordAlgorithm string

const (
	PasswordBcrypt PasswordAlgorithm = "bcrypt"
	PasswordArgon2 PasswordAlgorithm = "argon2"
)

type PasswordConfig struct {
	Algorithm  PasswordAlgorithm
	BcryptCost int

	// Argon2 parameters, used when Algorithm is PasswordArgon2.
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
TICKET CONFIG
====================================
*/

// TicketConfig enables confirmation tickets. When enabled, ConfirmOTP returns
// a signed ticket and SetPassword refuses to run without one.
type TicketConfig struct {
	Enabled bool
	Secret  []byte
	TTL     time.Duration
	Issuer  string
}

/*
====================================
RESEND CONFIG
====================================
*/

// ResendConfig throttles resend per phone. MaxPerWindow 0 disables it.
type ResendConfig struct {
	MaxPerWindow int
	Window       time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration the service has always run with.
func DefaultConfig() Config {
	return Config{
		Messaging: MessagingConfig{
			Channel:      ChannelWhatsApp,
			BodyTemplate: DefaultBodyTemplate,
		},
		Password: PasswordConfig{
			Algorithm:   PasswordBcrypt,
			BcryptCost:  10,
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Ticket: TicketConfig{
			TTL:    10 * time.Minute,
			Issuer: "phoneverify",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Ticket.Secret = cloneBytes(cfg.Ticket.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.OTP.TTL < 0 {
		return errors.New("OTP TTL must be >= 0")
	}
	if c.Records.RegistrationTTL < 0 {
		return errors.New("Records RegistrationTTL must be >= 0")
	}
	if c.Records.RegistrationTTL > 0 && c.OTP.TTL > c.Records.RegistrationTTL {
		return errors.New("OTP TTL must not outlive Records RegistrationTTL")
	}
	if strings.ContainsAny(c.Records.Namespace, " \t\r\n") {
		return errors.New("Records Namespace must not contain whitespace")
	}

	switch c.Messaging.Channel {
	case ChannelWhatsApp, ChannelSMS:
	default:
		return errors.New("Messaging Channel must be 'whatsapp' or 'sms'")
	}
	if strings.Count(c.Messaging.BodyTemplate, "%s") != 1 {
		return errors.New("Messaging BodyTemplate must contain exactly one %s")
	}
	if strings.Count(c.Messaging.BodyTemplate, "%") != 1 {
		return errors.New("Messaging BodyTemplate must not contain other verbs")
	}

	switch c.Password.Algorithm {
	case PasswordBcrypt:
		if c.Password.BcryptCost < 4 || c.Password.BcryptCost > 31 {
			return errors.New("Password BcryptCost must be between 4 and 31")
		}
	case PasswordArgon2:
		if c.Password.Memory < 8*1024 {
			return errors.New("Password Memory must be >= 8192 KB")
		}
		if c.Password.Time < 1 {
			return errors.New("Password Time must be >= 1")
		}
		if c.Password.Parallelism < 1 {
			return errors.New("Password Parallelism must be >= 1")
		}
		if c.Password.SaltLength < 16 {
			return errors.New("Password SaltLength must be >= 16")
		}
		if c.Password.KeyLength < 16 {
			return errors.New("Password KeyLength must be >= 16")
		}
	default:
		return errors.New("Password Algorithm must be 'bcrypt' or 'argon2'")
	}

	if c.Ticket.Enabled {
		if len(c.Ticket.Secret) < 32 {
			return errors.New("Ticket Secret must be at least 32 bytes")
		}
		if c.Ticket.TTL <= 0 {
			return errors.New("Ticket TTL must be > 0")
		}
	}

	if c.Resend.MaxPerWindow < 0 {
		return errors.New("Resend MaxPerWindow must be >= 0")
	}
	if c.Resend.MaxPerWindow > 0 && c.Resend.Window <= 0 {
		return errors.New("Resend Window must be > 0 when MaxPerWindow is set")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}

	return nil
}
