// Package stores provides the Redis-backed record store behind the phone
// verification state machine.
//
// # Design
//
// Every phone owns three independent string records:
//
//	key_<phone>   registration marker, value is the phone itself
//	otp_<phone>   current numeric challenge
//	pass_<phone>  committed password hash
//
// Each record is written with a single SET (last write wins) and an optional
// TTL. There are no multi-key transactions. The only atomic read-modify-write
// is [PhoneRecordStore.ConsumeChallenge], a compare-and-delete Lua script used
// when single-use challenges are enabled.
//
// # Architecture boundaries
//
// This package owns key naming and persistence. It does NOT generate codes,
// validate phones, or decide which failure a caller sees. Those belong to the
// flow functions in internal/flows.
//
// # What this package must NOT do
//
//   - Import phoneverify or any sibling internal package.
//   - Log or expose challenge codes or password hashes.
package stores
