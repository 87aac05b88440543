// Package metrics provides lock-free counters and a delivery latency histogram
// for the verification engine.
//
// Counters are stored in cache-line-padded uint64 slots and incremented
// atomically. The histogram uses 8 fixed buckets (≤5ms … +Inf). Both are
// allocation-free on the write path.
//
// Export (Prometheus, OTel) lives in metrics/export/ and reads Snapshot values.
// This package performs no I/O and imports nothing from the module.
package metrics
