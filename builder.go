package phoneverify

import (
	"errors"

	internalaudit "github.com/MrEthical07/phoneverify/internal/audit"
	"github.com/MrEthical07/phoneverify/internal/flows"
	"github.com/MrEthical07/phoneverify/internal/rate"
	"github.com/MrEthical07/phoneverify/internal/stores"
	"github.com/MrEthical07/phoneverify/jwt"
	"github.com/MrEthical07/phoneverify/password"
	"github.com/MrEthical07/phoneverify/phone"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder can be built once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	validator PhoneValidator
	gateway   MessagingGateway
	hasher    PasswordHasher
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client every record is stored through. The caller keeps
// ownership and closes it after Engine.Close.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithValidator replaces the default Indonesian [phone.Validator].
func (b *Builder) WithValidator(v PhoneValidator) *Builder {
	b.validator = v
	return b
}

func (b *Builder) WithGateway(g MessagingGateway) *Builder {
	b.gateway = g
	return b
}

// WithHasher overrides the hasher selected by Config.Password.
func (b *Builder) WithHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink sets the sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	if b.config.Audit.BufferSize <= 0 {
		b.config.Audit.BufferSize = 1024
	}
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.gateway == nil {
		return nil, errors.New("messaging gateway required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:    cloneConfig(cfg),
		store:     stores.NewPhoneRecordStore(b.redis, cfg.Records.Namespace),
		validator: b.validator,
		gateway:   b.gateway,
		hasher:    b.hasher,
	}

	if engine.validator == nil {
		engine.validator = phone.NewValidator()
	}

	if engine.hasher == nil {
		h, err := newConfiguredHasher(cfg.Password)
		if err != nil {
			return nil, err
		}
		engine.hasher = h
	}

	engine.resendLimiter = rate.New(b.redis, rate.Config{
		Namespace:    cfg.Records.Namespace,
		MaxPerWindow: cfg.Resend.MaxPerWindow,
		Window:       cfg.Resend.Window,
	})

	if cfg.Ticket.Enabled {
		tm, err := jwt.NewManager(jwt.Config{
			TTL:    cfg.Ticket.TTL,
			Secret: cloneBytes(cfg.Ticket.Secret),
			Issuer: cfg.Ticket.Issuer,
		})
		if err != nil {
			return nil, err
		}
		engine.tickets = tm
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.flows = flows.New(engine.buildFlowDeps())

	b.built = true

	return engine, nil
}

func newConfiguredHasher(cfg PasswordConfig) (PasswordHasher, error) {
	switch cfg.Algorithm {
	case PasswordArgon2:
		return password.NewArgon2(password.Config{
			Memory:      cfg.Memory,
			Time:        cfg.Time,
			Parallelism: cfg.Parallelism,
			SaltLength:  cfg.SaltLength,
			KeyLength:   cfg.KeyLength,
		})
	default:
		return password.NewBcrypt(cfg.BcryptCost)
	}
}
