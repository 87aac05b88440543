package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
)

var errInvalidCodeBounds = errors.New("invalid otp code bounds")

// NewNumericCode draws a code uniformly from [low, high) and renders it in
// base 10. Callers pick bounds whose values share one digit count so every
// code has the same width without zero padding.
func NewNumericCode(low, high int64) (string, error) {
	if low < 0 || high <= low {
		return "", errInvalidCodeBounds
	}

	n, err := rand.Int(rand.Reader, big.NewInt(high-low))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(low+n.Int64(), 10), nil
}
