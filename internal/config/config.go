// Package config loads process configuration for the phoneverify server from
// the environment and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/phoneverify"
	"github.com/spf13/viper"
)

const (
	ProviderTwilio   = "twilio"
	ProviderSMSLocal = "smslocal"
	ProviderConsole  = "console"
)

// Config holds server configuration. Keys match the environment variable names.
type Config struct {
	// AppPort is the HTTP listen port.
	AppPort int `mapstructure:"APP_PORT"`
	// Env is "development" or "production". Production refuses the console provider.
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// TrustProxy takes the client IP from X-Forwarded-For.
	TrustProxy bool `mapstructure:"TRUST_PROXY"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     int    `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	KeyNamespace  string `mapstructure:"KEY_NAMESPACE"`

	// MessagingProvider is one of twilio, smslocal or console.
	MessagingProvider string `mapstructure:"MESSAGING_PROVIDER"`
	MessagingChannel  string `mapstructure:"MESSAGING_CHANNEL"`

	TwilioSID  string `mapstructure:"TWILIO_SID"`
	TwilioAuth string `mapstructure:"TWILIO_AUTH"`
	// TwilioNo is the sender number, bare (e.g. +14155238886).
	TwilioNo string `mapstructure:"TWILIO_NO"`

	SMSLocalAPIKey  string `mapstructure:"SMS_LOCAL_API_KEY"`
	SMSLocalSender  string `mapstructure:"SMS_LOCAL_SENDER"`
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`

	OTPTTL              time.Duration `mapstructure:"OTP_TTL"`
	RegistrationTTL     time.Duration `mapstructure:"REGISTRATION_TTL"`
	OTPConsumeOnConfirm bool          `mapstructure:"OTP_CONSUME_ON_CONFIRM"`
	ResendMaxPerWindow  int           `mapstructure:"RESEND_MAX_PER_WINDOW"`
	ResendWindow        time.Duration `mapstructure:"RESEND_WINDOW"`

	PasswordHasher string `mapstructure:"PASSWORD_HASHER"`
	BcryptCost     int    `mapstructure:"BCRYPT_COST"`

	// TicketSecret enables confirmation tickets when set.
	TicketSecret string        `mapstructure:"TICKET_SECRET"`
	TicketTTL    time.Duration `mapstructure:"TICKET_TTL"`

	AuditLog bool `mapstructure:"AUDIT_LOG"`
}

// Load reads .env (if present), then the environment. Env vars override .env.
func Load() (*Config, error) {
	return load(".env")
}

// missingConfig reports whether err only says the .env file is absent.
func missingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}

func load(envFile string) (*Config, error) {
	v := viper.New()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !missingConfig(err) {
			return nil, fmt.Errorf("config: read %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()

	v.SetDefault("APP_PORT", 3000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KEY_NAMESPACE", "")
	v.SetDefault("MESSAGING_PROVIDER", ProviderTwilio)
	v.SetDefault("MESSAGING_CHANNEL", string(phoneverify.ChannelWhatsApp))
	v.SetDefault("TWILIO_SID", "")
	v.SetDefault("TWILIO_AUTH", "")
	v.SetDefault("TWILIO_NO", "")
	v.SetDefault("SMS_LOCAL_API_KEY", "")
	v.SetDefault("SMS_LOCAL_SENDER", "")
	v.SetDefault("SMS_LOCAL_BASE_URL", "")
	v.SetDefault("OTP_TTL", "0s")
	v.SetDefault("REGISTRATION_TTL", "0s")
	v.SetDefault("OTP_CONSUME_ON_CONFIRM", false)
	v.SetDefault("RESEND_MAX_PER_WINDOW", 0)
	v.SetDefault("RESEND_WINDOW", "0s")
	v.SetDefault("PASSWORD_HASHER", string(phoneverify.PasswordBcrypt))
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("TICKET_SECRET", "")
	v.SetDefault("TICKET_TTL", "10m")
	v.SetDefault("AUDIT_LOG", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return errors.New("config: APP_PORT must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return errors.New("config: REDIS_HOST must be set")
	}

	switch c.MessagingProvider {
	case ProviderTwilio:
		if c.TwilioSID == "" || c.TwilioAuth == "" || c.TwilioNo == "" {
			return errors.New("config: TWILIO_SID, TWILIO_AUTH and TWILIO_NO must be set for the twilio provider")
		}
	case ProviderSMSLocal:
		if c.SMSLocalAPIKey == "" {
			return errors.New("config: SMS_LOCAL_API_KEY must be set for the smslocal provider")
		}
	case ProviderConsole:
		if c.Env == "production" {
			return errors.New("config: MESSAGING_PROVIDER=console must not be used when APP_ENV=production")
		}
	default:
		return fmt.Errorf("config: unknown MESSAGING_PROVIDER %q", c.MessagingProvider)
	}
	return nil
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

// ListenAddr returns the HTTP listen address.
func (c *Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.AppPort)
}

// Engine maps the process configuration onto phoneverify.Config. The result
// is checked by Builder.Build.
func (c *Config) Engine() phoneverify.Config {
	cfg := phoneverify.DefaultConfig()

	cfg.OTP.TTL = c.OTPTTL
	cfg.OTP.ConsumeOnConfirm = c.OTPConsumeOnConfirm
	cfg.Records.Namespace = c.KeyNamespace
	cfg.Records.RegistrationTTL = c.RegistrationTTL

	cfg.Messaging.Channel = phoneverify.Channel(strings.ToLower(c.MessagingChannel))
	switch c.MessagingProvider {
	case ProviderTwilio:
		cfg.Messaging.From = c.TwilioNo
	case ProviderSMSLocal:
		cfg.Messaging.From = c.SMSLocalSender
		cfg.Messaging.Channel = phoneverify.ChannelSMS
	}

	cfg.Password.Algorithm = phoneverify.PasswordAlgorithm(strings.ToLower(c.PasswordHasher))
	cfg.Password.BcryptCost = c.BcryptCost

	if c.TicketSecret != "" {
		cfg.Ticket.Enabled = true
		cfg.Ticket.Secret = []byte(c.TicketSecret)
		cfg.Ticket.TTL = c.TicketTTL
	}

	cfg.Resend.MaxPerWindow = c.ResendMaxPerWindow
	cfg.Resend.Window = c.ResendWindow

	cfg.Audit.Enabled = c.AuditLog

	return cfg
}
