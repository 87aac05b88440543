// Package internal contains helpers that are intentionally private to phoneverify,
// chiefly the numeric OTP generator.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher and Sink implementations)
//   - config: process configuration loaded from .env and the environment
//   - flows: flow orchestrators for every Engine operation
//   - metrics: padded atomic counters and latency histograms
//   - rate: Redis-backed fixed-window counters
//   - stores: key_/otp_/pass_ record store
//
// # What this package must NOT do
//
//   - Export types that appear in the public phoneverify API.
//   - Be imported by any package outside the phoneverify module.
package internal
