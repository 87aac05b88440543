package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ticketPurpose = "set_password"

// minSecretLength matches the SHA-256 output size.
const minSecretLength = 32

var (
	ErrTicketPhoneMismatch = errors.New("ticket issued for a different phone")
	ErrTicketPurpose       = errors.New("ticket purpose invalid")
)

// Config controls ticket signing. Tickets are HS256 with Secret as the key;
// the same process signs and verifies, so no key pair is needed.
type Config struct {
	TTL      time.Duration
	Secret   []byte
	Issuer   string
	Audience string
	Leeway   time.Duration
}

type Manager struct {
	config Config
}

// TicketClaims is the payload of a confirmation ticket.
type TicketClaims struct {
	Purpose string `json:"pur"`
	jwt.RegisteredClaims
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("ticket secret must be at least %d bytes", minSecretLength)
	}

	return &Manager{config: cfg}, nil
}

// CreateTicket signs a ticket bound to phone.
func (j *Manager) CreateTicket(phone string) (string, error) {
	if phone == "" {
		return "", errors.New("ticket requires a phone")
	}

	now := time.Now()
	claims := TicketClaims{
		Purpose: ticketPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   phone,
			ID:        uuid.NewString(),
			Issuer:    j.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.TTL)),
		},
	}
	if j.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{j.config.Audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.config.Secret)
}

// ParseTicket verifies signature, expiry, issuer and audience.
func (j *Manager) ParseTicket(tokenStr string) (*TicketClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if j.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(j.config.Leeway))
	}
	if j.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(j.config.Issuer))
	}
	if j.config.Audience != "" {
		options = append(options, jwt.WithAudience(j.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &TicketClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return j.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TicketClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Purpose != ticketPurpose {
		return nil, ErrTicketPurpose
	}
	return claims, nil
}

// VerifyTicket parses tokenStr and checks it was issued for phone.
func (j *Manager) VerifyTicket(tokenStr, phone string) error {
	claims, err := j.ParseTicket(tokenStr)
	if err != nil {
		return err
	}
	if claims.Subject != phone {
		return ErrTicketPhoneMismatch
	}
	return nil
}
