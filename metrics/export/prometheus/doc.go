// Package prometheus renders phoneverify engine metrics in the Prometheus
// text exposition format. Counters are named phoneverify_*_total and the
// delivery latency histogram is phoneverify_delivery_latency_seconds.
//
// The exporter never registers with a global registry; callers mount
// [Exporter.Handler] wherever they serve /metrics.
package prometheus
