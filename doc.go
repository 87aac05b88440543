// Package phoneverify verifies ownership of a phone number with a one-time
// passcode and lets the verified owner commit a password.
//
// All state lives in Redis under three keys per phone: key_<phone> (the
// registration), otp_<phone> (the live challenge) and pass_<phone> (the
// password hash). The [Engine] holds no per-phone state between calls and is
// safe for concurrent use once returned by [Builder.Build].
//
// # Collaborators
//
// Phone validation, message delivery and password hashing are injected through
// [PhoneValidator], [MessagingGateway] and [PasswordHasher]. The phone,
// gateway/... and password sub-packages provide implementations.
//
// # Concurrency
//
// Records are written with single-key SET, last write wins. Two concurrent
// resends for the same phone race, and a confirm racing a resend may reject a
// code that was correct a moment earlier. No per-phone lock is taken.
package phoneverify
