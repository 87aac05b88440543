package internaldefs

import (
	"github.com/MrEthical07/phoneverify"
)

// CounterDef names one engine counter for every exporter.
type CounterDef struct {
	ID   phoneverify.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   phoneverify.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: phoneverify.MetricRegisterSuccess, Name: "phoneverify_register_success_total", Help: "Registrations that delivered an OTP."},
	{ID: phoneverify.MetricRegisterFailure, Name: "phoneverify_register_failure_total", Help: "Registrations that failed after validation."},
	{ID: phoneverify.MetricRegisterInvalidPhone, Name: "phoneverify_register_invalid_phone_total", Help: "Registrations rejected by the phone validator."},
	{ID: phoneverify.MetricRegisterUndeliverable, Name: "phoneverify_register_undeliverable_total", Help: "Registrations rejected by carrier lookup."},
	{ID: phoneverify.MetricOTPIssued, Name: "phoneverify_otp_issued_total", Help: "OTP challenges written."},
	{ID: phoneverify.MetricOTPResend, Name: "phoneverify_otp_resend_total", Help: "OTPs resent and delivered."},
	{ID: phoneverify.MetricOTPResendRateLimited, Name: "phoneverify_otp_resend_rate_limited_total", Help: "Resend requests denied by the throttle."},
	{ID: phoneverify.MetricOTPConfirmSuccess, Name: "phoneverify_otp_confirm_success_total", Help: "Successful OTP confirmations."},
	{ID: phoneverify.MetricOTPConfirmMismatch, Name: "phoneverify_otp_confirm_mismatch_total", Help: "OTP confirmations with a wrong or superseded code."},
	{ID: phoneverify.MetricOTPConfirmNotRegistered, Name: "phoneverify_otp_confirm_not_registered_total", Help: "OTP confirmations for unregistered phones."},
	{ID: phoneverify.MetricPasswordSetSuccess, Name: "phoneverify_password_set_success_total", Help: "Passwords stored."},
	{ID: phoneverify.MetricPasswordSetFailure, Name: "phoneverify_password_set_failure_total", Help: "Failed password set requests."},
	{ID: phoneverify.MetricPasswordSetMismatch, Name: "phoneverify_password_set_mismatch_total", Help: "Password set requests whose confirmation differed."},
	{ID: phoneverify.MetricTicketRejected, Name: "phoneverify_ticket_rejected_total", Help: "Password set requests with a missing or invalid ticket."},
	{ID: phoneverify.MetricDeliverySuccess, Name: "phoneverify_delivery_success_total", Help: "Messages accepted by the gateway."},
	{ID: phoneverify.MetricDeliveryFailure, Name: "phoneverify_delivery_failure_total", Help: "Gateway lookup or send failures."},
	{ID: phoneverify.MetricStoreFailure, Name: "phoneverify_store_failure_total", Help: "Redis errors."},
}

var HistogramDefs = []HistogramDef{
	{ID: phoneverify.MetricDeliveryLatency, Name: "phoneverify_delivery_latency_seconds", Help: "Gateway send latency."},
}

// AuditDroppedName is exported by every backend next to the engine counters.
const (
	AuditDroppedName = "phoneverify_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

// HistogramBounds are the upper bounds, in seconds, of the engine buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix spells HistogramBounds in instrument-name form.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a snapshot histogram to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
