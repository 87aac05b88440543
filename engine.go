package phoneverify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/phoneverify/internal"
	internalaudit "github.com/MrEthical07/phoneverify/internal/audit"
	"github.com/MrEthical07/phoneverify/internal/flows"
	"github.com/MrEthical07/phoneverify/internal/rate"
	"github.com/MrEthical07/phoneverify/internal/stores"
	"github.com/MrEthical07/phoneverify/jwt"
)

// OTP codes are drawn from [OTPCodeLow, OTPCodeHigh): always four digits,
// never starting with 9.
const (
	OTPCodeLow  int64 = 1000
	OTPCodeHigh int64 = 9000
)

// Engine runs the verification state machine. Build it with [New] and
// [Builder.Build]; the zero value is not usable.
type Engine struct {
	config        Config
	store         *stores.PhoneRecordStore
	resendLimiter *rate.Limiter
	validator     PhoneValidator
	gateway       MessagingGateway
	hasher        PasswordHasher
	tickets       *jwt.Manager
	audit         *internalaudit.Dispatcher
	metrics       *Metrics
	flows         flows.Service
}

// Close flushes pending audit events. It does not close the Redis client,
// which the caller owns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports audit events dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Ping checks that Redis answers.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if err := e.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.flows.Initialized()
}

// deliver renders the OTP message and hands it to the gateway, timing the
// round trip into the delivery latency histogram.
func (e *Engine) deliver(ctx context.Context, phone, code string) (any, error) {
	msg := Message{
		To:      phone,
		From:    e.config.Messaging.From,
		Body:    fmt.Sprintf(e.config.Messaging.BodyTemplate, code),
		Code:    code,
		Channel: e.config.Messaging.Channel,
	}

	start := time.Now()
	receipt, err := e.gateway.Send(ctx, msg)
	e.metrics.Observe(MetricDeliveryLatency, time.Since(start))
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (e *Engine) mapStoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (e *Engine) buildFlowDeps() flows.Deps {
	ttl := e.config.OTP.TTL
	regTTL := e.config.Records.RegistrationTTL

	deps := flows.VerificationDeps{
		ValidatePhone: func(phone string) (bool, string, error) {
			info, err := e.validator.Validate(phone)
			if err != nil {
				return false, "", err
			}
			return info.Valid, info.Operator, nil
		},
		LookupCarrier: func(ctx context.Context, phone string) (*int, error) {
			info, err := e.gateway.LookupCarrier(ctx, phone)
			if err != nil {
				return nil, err
			}
			return info.ErrorCode, nil
		},
		Deliver: e.deliver,
		GenerateCode: func() (string, error) {
			return internal.NewNumericCode(OTPCodeLow, OTPCodeHigh)
		},
		HashPassword: e.hasher.Hash,

		SaveRegistration: func(ctx context.Context, phone string) error {
			return e.store.SaveRegistration(ctx, phone, regTTL)
		},
		Registration: e.store.Registration,
		SaveChallenge: func(ctx context.Context, phone, code string) error {
			return e.store.SaveChallenge(ctx, phone, code, ttl)
		},
		Challenge:        e.store.Challenge,
		SavePasswordHash: e.store.SavePasswordHash,

		IsNotFound: func(err error) bool {
			return errors.Is(err, stores.ErrRecordNotFound)
		},
		IsChallengeMismatch: func(err error) bool {
			return errors.Is(err, stores.ErrChallengeMismatch)
		},
		MapStoreError: e.mapStoreError,
		IsRateLimited: func(err error) bool {
			return errors.Is(err, rate.ErrRateLimited)
		},

		NewDiagnostic: diagnose,
		MetricInc:     func(id int) { e.metricInc(MetricID(id)) },
		EmitAudit:     e.emitAudit,

		Metrics: flows.VerificationMetrics{
			RegisterSuccess:       int(MetricRegisterSuccess),
			RegisterFailure:       int(MetricRegisterFailure),
			RegisterInvalidPhone:  int(MetricRegisterInvalidPhone),
			RegisterUndeliverable: int(MetricRegisterUndeliverable),
			OTPIssued:             int(MetricOTPIssued),
			OTPResend:             int(MetricOTPResend),
			OTPResendRateLimited:  int(MetricOTPResendRateLimited),
			ConfirmSuccess:        int(MetricOTPConfirmSuccess),
			ConfirmMismatch:       int(MetricOTPConfirmMismatch),
			ConfirmNotRegistered:  int(MetricOTPConfirmNotRegistered),
			PasswordSetSuccess:    int(MetricPasswordSetSuccess),
			PasswordSetFailure:    int(MetricPasswordSetFailure),
			PasswordSetMismatch:   int(MetricPasswordSetMismatch),
			TicketRejected:        int(MetricTicketRejected),
			DeliverySuccess:       int(MetricDeliverySuccess),
			DeliveryFailure:       int(MetricDeliveryFailure),
			StoreFailure:          int(MetricStoreFailure),
		},
		Events: flows.VerificationEvents{
			Register:    auditEventRegister,
			OTPIssue:    auditEventOTPIssue,
			OTPResend:   auditEventOTPResend,
			OTPConfirm:  auditEventOTPConfirm,
			PasswordSet: auditEventPasswordSet,
		},
		Errors: flows.VerificationErrors{
			EngineNotReady:    ErrEngineNotReady,
			InputValidation:   ErrInputValidationFailed,
			InvalidPhone:      ErrInvalidPhone,
			Undeliverable:     ErrUndeliverableNumber,
			NotRegistered:     ErrPhoneNotRegistered,
			OtpMissing:        ErrOtpMissingInput,
			OtpMismatch:       ErrOtpMismatch,
			PasswordMissing:   ErrPasswordMissing,
			PasswordMismatch:  ErrPasswordMismatch,
			StoreUnavailable:  ErrStoreUnavailable,
			DeliveryFailed:    ErrDeliveryFailed,
			ResendRateLimited: ErrResendRateLimited,
			TicketInvalid:     ErrTicketInvalid,
		},
	}

	if e.config.OTP.ConsumeOnConfirm {
		deps.ConsumeChallenge = e.store.ConsumeChallenge
	}
	if e.resendLimiter.Enabled() {
		deps.CheckResend = e.resendLimiter.CheckResend
	}
	if e.tickets != nil {
		deps.IssueTicket = e.tickets.CreateTicket
		deps.VerifyTicket = e.tickets.VerifyTicket
	}

	return flows.Deps{Verification: deps}
}
