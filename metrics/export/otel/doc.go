// Package otel publishes phoneverify engine metrics through an OpenTelemetry
// Meter supplied by the caller.
//
// Every counter becomes an Int64ObservableCounter and every histogram bucket
// an Int64ObservableGauge; one callback reads the engine snapshot per
// collection. The caller owns the MeterProvider.
package otel
