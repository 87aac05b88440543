// Package middleware holds the net/http adapters placed in front of the
// phoneverify handlers.
//
//   - [RequestContext] stamps a request id and the client IP into the context
//     so engine audit events carry them.
//   - [AccessLog] writes one slog record per request.
//   - [Ticket] lifts a confirmation ticket from the Authorization header.
//
// This package does not call the engine and makes no verification decisions.
package middleware
