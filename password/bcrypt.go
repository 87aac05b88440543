package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor the service has always used.
const DefaultBcryptCost = 10

var errEmptyPassword = errors.New("password must not be empty")

// Bcrypt hashes passwords with a fixed bcrypt cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a Bcrypt hasher. A cost of 0 selects DefaultBcryptCost;
// anything outside bcrypt's accepted range is an error.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost must be between 4 and 31")
	}
	return &Bcrypt{cost: cost}, nil
}

// Cost reports the configured work factor.
func (b *Bcrypt) Cost() int {
	return b.cost
}

func (b *Bcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether password matches encodedHash. A mismatch is not an
// error; a malformed hash is.
func (b *Bcrypt) Verify(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
