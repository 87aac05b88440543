// Package jwt issues and verifies short-lived confirmation tickets.
//
// A ticket proves that the bearer confirmed an OTP for one phone number. It is
// signed with HS256 under a shared secret and carries the phone as its
// subject, so a ticket minted for one number never validates for another.
package jwt
