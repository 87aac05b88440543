package phoneverify

import (
	internalmetrics "github.com/MrEthical07/phoneverify/internal/metrics"
)

// MetricID identifies one engine counter or histogram.
type MetricID = internalmetrics.MetricID

const (
	MetricRegisterSuccess         = internalmetrics.MetricRegisterSuccess
	MetricRegisterFailure         = internalmetrics.MetricRegisterFailure
	MetricRegisterInvalidPhone    = internalmetrics.MetricRegisterInvalidPhone
	MetricRegisterUndeliverable   = internalmetrics.MetricRegisterUndeliverable
	MetricOTPIssued               = internalmetrics.MetricOTPIssued
	MetricOTPResend               = internalmetrics.MetricOTPResend
	MetricOTPResendRateLimited    = internalmetrics.MetricOTPResendRateLimited
	MetricOTPConfirmSuccess       = internalmetrics.MetricOTPConfirmSuccess
	MetricOTPConfirmMismatch      = internalmetrics.MetricOTPConfirmMismatch
	MetricOTPConfirmNotRegistered = internalmetrics.MetricOTPConfirmNotRegistered
	MetricPasswordSetSuccess      = internalmetrics.MetricPasswordSetSuccess
	MetricPasswordSetFailure      = internalmetrics.MetricPasswordSetFailure
	MetricPasswordSetMismatch     = internalmetrics.MetricPasswordSetMismatch
	MetricTicketRejected          = internalmetrics.MetricTicketRejected
	MetricDeliverySuccess         = internalmetrics.MetricDeliverySuccess
	MetricDeliveryFailure         = internalmetrics.MetricDeliveryFailure
	MetricStoreFailure            = internalmetrics.MetricStoreFailure
	// MetricDeliveryLatency is a histogram of gateway Send round trips.
	MetricDeliveryLatency = internalmetrics.MetricDeliveryLatency
)

// Metrics holds lock-free engine counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot = internalmetrics.Snapshot

func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(cfg.Enabled, cfg.EnableLatencyHistograms)
}
