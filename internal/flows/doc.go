// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunRegister, RunConfirmOTP, RunSetPassword, ...) accepts
// a typed dependency struct and returns results without side effects beyond
// those dependencies. The Engine owns the Redis store, gateway, hasher, audit
// dispatcher and metrics; flows only sequence calls to them.
//
// The package must not hold state between calls and must not import the root
// package.
package flows
