package flows

import "fmt"

// Client-facing failure messages. HTTP clients match on these strings.
const (
	msgInputPhone       = "Input phone number"
	msgMissingPhone     = "invalid phone number"
	msgPhoneNotFound    = "Phone number not found"
	msgOtpMissing       = "OTP not found"
	msgOtpMismatch      = "invalid OTP"
	msgPasswordNoPhone  = "phone number not found"
	msgPasswordMissing  = "input your password"
	msgPasswordMismatch = "password did not match"
	msgTicketInvalid    = "invalid confirmation ticket"
	msgResendLimited    = "too many OTP requests, try again later"
)

func msgInvalidPhone(phone string) string {
	return fmt.Sprintf("Cannot send OTP to +%s. Invalid phone number", phone)
}
