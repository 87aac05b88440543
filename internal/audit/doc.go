// Package audit implements async event dispatching for phone verification operations.
//
// # Components
//
//   - [Sink]: event consumers (channel, JSON lines, slog, no-op).
//   - [Dispatcher]: buffered async relay that either blocks or drops when full.
//   - [Event]: one verification step with phone, request id, IP and labels.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit. That responsibility belongs to the Engine.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import phoneverify or any sibling internal package.
//   - Carry OTP values or password material.
package audit
