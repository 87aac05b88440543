// Package rate provides the Redis-backed fixed-window counter used to throttle
// OTP resends.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefix:
//   - rs: resend per-phone
//
// # What this package must NOT do
//
//   - Decide what a denied request means to the caller.
//   - Be imported outside the phoneverify module.
package rate
