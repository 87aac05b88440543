package httpapi

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const (
	msgNumericOnly = "just numeric input"
	msgTooLong     = "too long input"
	msgFourDigits  = "just enter 4 numbers"

	maxPhoneLength = 13
	otpLength      = 4
)

// FieldError is one rejected request field.
type FieldError struct {
	Value    string `json:"value"`
	Msg      string `json:"msg"`
	Param    string `json:"param"`
	Location string `json:"location"`
}

// looseString accepts a JSON string or number, since clients send phone
// numbers both ways.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// checkPhone validates a supplied phone. An absent phone is left to the
// engine, which answers with its own message.
func checkPhone(value, location string) []FieldError {
	if value == "" {
		return nil
	}
	var errs []FieldError
	if !isNumeric(value) {
		errs = append(errs, FieldError{Value: value, Msg: msgNumericOnly, Param: "phone", Location: location})
	}
	if len(value) > maxPhoneLength {
		errs = append(errs, FieldError{Value: value, Msg: msgTooLong, Param: "phone", Location: location})
	}
	return errs
}

func checkOTP(value string) []FieldError {
	if value == "" {
		return nil
	}
	var errs []FieldError
	if len(value) != otpLength {
		errs = append(errs, FieldError{Value: value, Msg: msgFourDigits, Param: "otp", Location: "body"})
	}
	if !isNumeric(value) {
		errs = append(errs, FieldError{Value: value, Msg: msgNumericOnly, Param: "otp", Location: "body"})
	}
	return errs
}

// resendRequested reads the resend query flag. Anything ParseBool rejects is false.
func resendRequested(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
