package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

// Lower bounds enforced on both Config and stored hashes.
const (
	minMemoryKB   = 8 * 1024
	minSaltLength = 16
	minKeyLength  = 16
)

var errMalformedHash = errors.New("malformed argon2id hash")

// Config holds argon2id cost parameters. Memory is in KiB.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func DefaultArgon2Config() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (c Config) validate() error {
	switch {
	case c.Memory < minMemoryKB:
		return fmt.Errorf("argon2 memory must be >= %d KiB", minMemoryKB)
	case c.Time < 1:
		return errors.New("argon2 time must be >= 1")
	case c.Parallelism < 1:
		return errors.New("argon2 parallelism must be >= 1")
	case c.SaltLength < minSaltLength:
		return fmt.Errorf("argon2 salt length must be >= %d", minSaltLength)
	case c.KeyLength < minKeyLength:
		return fmt.Errorf("argon2 key length must be >= %d", minKeyLength)
	}
	return nil
}

// Argon2 hashes passwords with argon2id and encodes them as PHC strings.
type Argon2 struct {
	cfg Config
}

func NewArgon2(cfg Config) (*Argon2, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Argon2{cfg: cfg}, nil
}

// Hash derives a key from the raw password bytes; no Unicode normalisation
// is applied.
func (a *Argon2) Hash(password string) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}

	salt := make([]byte, a.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, a.cfg.Time, a.cfg.Memory, a.cfg.Parallelism, a.cfg.KeyLength)

	return encodePHC(a.cfg, salt, key), nil
}

// Verify recomputes the key with the parameters stored in encodedHash, so
// hashes made under an older Config still verify.
func (a *Argon2) Verify(password, encodedHash string) (bool, error) {
	cfg, salt, key, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, cfg.Time, cfg.Memory, cfg.Parallelism, cfg.KeyLength)
	return subtle.ConstantTimeCompare(got, key) == 1, nil
}

func encodePHC(cfg Config, salt, key []byte) string {
	b64 := base64.StdEncoding
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version,
		cfg.Memory, cfg.Time, cfg.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key))
}

// decodePHC parses $argon2id$v=19$m=..,t=..,p=..$salt$key.
func decodePHC(encoded string) (Config, []byte, []byte, error) {
	var cfg Config

	rest, ok := strings.CutPrefix(encoded, argon2Prefix)
	if !ok {
		return cfg, nil, nil, errMalformedHash
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return cfg, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil {
		return cfg, nil, nil, errMalformedHash
	}
	if version != argon2.Version {
		return cfg, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &cfg.Memory, &cfg.Time, &cfg.Parallelism); err != nil {
		return cfg, nil, nil, errMalformedHash
	}
	if cfg.Memory < minMemoryKB || cfg.Time < 1 || cfg.Parallelism < 1 {
		return cfg, nil, nil, errMalformedHash
	}

	salt, err := base64.StdEncoding.DecodeString(fields[2])
	if err != nil || len(salt) < minSaltLength {
		return cfg, nil, nil, errMalformedHash
	}
	key, err := base64.StdEncoding.DecodeString(fields[3])
	if err != nil || len(key) == 0 {
		return cfg, nil, nil, errMalformedHash
	}

	cfg.SaltLength = uint32(len(salt))
	cfg.KeyLength = uint32(len(key))
	return cfg, salt, key, nil
}
