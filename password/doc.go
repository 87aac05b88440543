// Package password implements the one-way salted hashers used when a verified
// phone owner commits a password.
//
// # Hashers
//
//   - [Bcrypt]: default; cost 10 unless configured otherwise. Output is the
//     standard $2a$ modular crypt string.
//   - [Argon2]: argon2id in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Both generate a fresh random salt on every Hash call, so hashing the same
// plaintext twice yields different strings. Verify is provided for callers
// outside this module; the verification flow itself never checks a password.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other phoneverify package.
//   - Log plaintext passwords.
package password
