package phoneverify

import (
	"context"
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/phoneverify/internal/audit"
	"github.com/MrEthical07/phoneverify/phone"
)

// PhoneInfo is the validator verdict for one number.
type PhoneInfo = phone.Info

// PhoneValidator decides whether a number is a recognised mobile number.
// An error and a result with Valid false are both treated as ErrInvalidPhone.
type PhoneValidator interface {
	Validate(phone string) (PhoneInfo, error)
}

// Channel selects how the OTP message is addressed.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

// CarrierInfo is the result of a carrier lookup. A non-nil ErrorCode means
// the provider cannot deliver to the number.
type CarrierInfo struct {
	Name      string `json:"name,omitempty"`
	Type      string `json:"type,omitempty"`
	ErrorCode *int   `json:"error_code"`
}

// Deliverable reports whether the lookup returned no carrier error.
func (c CarrierInfo) Deliverable() bool {
	return c.ErrorCode == nil
}

// Message is one outbound OTP text. To and From are bare numbers; the gateway
// applies channel-specific addressing.
type Message struct {
	To   string
	From string
	Body string
	// Code is the raw OTP, for providers that render their own template.
	Code    string
	Channel Channel
}

// DeliveryReceipt is what the provider returned for an accepted message. It is
// echoed to HTTP clients under resp_twilio.
type DeliveryReceipt struct {
	SID          string    `json:"sid"`
	Provider     string    `json:"provider"`
	Status       string    `json:"status"`
	To           string    `json:"to"`
	From         string    `json:"from"`
	Body         string    `json:"body,omitempty"`
	DateCreated  time.Time `json:"date_created"`
	ErrorCode    *int      `json:"error_code"`
	ErrorMessage *string   `json:"error_message"`
}

// MessagingGateway looks up carriers and sends messages. Implementations live
// in the gateway/ sub-packages.
type MessagingGateway interface {
	LookupCarrier(ctx context.Context, phone string) (CarrierInfo, error)
	Send(ctx context.Context, msg Message) (*DeliveryReceipt, error)
}

// PasswordHasher produces a salted one-way digest with a fresh salt per call.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// PhoneState is derived from which records exist for a phone. It is never stored.
type PhoneState uint8

const (
	StateUnregistered PhoneState = iota
	// StateRegistered has a registration record but no live challenge.
	StateRegistered
	StatePending
	StatePasswordSet
)

func (s PhoneState) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StatePending:
		return "pending"
	case StatePasswordSet:
		return "password_set"
	default:
		return "unregistered"
	}
}

// RegisterResult is returned by [Engine.Register]. The OTP is echoed to the
// caller on purpose; HTTP clients have always received it.
type RegisterResult struct {
	Phone    string
	OTP      string
	Delivery *DeliveryReceipt
}

// ConfirmRequest drives [Engine.ConfirmOTP]. With Resend set the OTP field is
// ignored and a new challenge is issued.
type ConfirmRequest struct {
	Phone  string
	OTP    string
	Resend bool
}

// ConfirmResult carries the matched code on confirm, or the new code and its
// delivery receipt on resend. Ticket is set only when tickets are enabled.
type ConfirmResult struct {
	Phone    string
	OTP      string
	Resent   bool
	Delivery *DeliveryReceipt
	Ticket   string
}

type SetPasswordRequest struct {
	Phone      string
	Password   string
	RePassword string
	Ticket     string
}

// SetPasswordResult echoes the stored hash, never the plaintext.
type SetPasswordResult struct {
	Phone        string
	PasswordHash string
}

// AuditEvent is one structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine’s audit dispatcher.
type AuditSink = internalaudit.Sink

type NoOpSink = internalaudit.NoOpSink

type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON event per line to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// SlogSink logs each event through a *slog.Logger.
type SlogSink = internalaudit.SlogSink

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}
