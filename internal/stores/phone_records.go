package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	registrationKind = "key"
	challengeKind    = "otp"
	passwordKind     = "pass"
)

var (
	ErrRecordNotFound       = errors.New("phone record not found")
	ErrChallengeMismatch    = errors.New("phone challenge mismatch")
	ErrRecordsUnavailable   = errors.New("phone record redis unavailable")
	errUnexpectedLuaOutcome = errors.New("unexpected lua result")
)

// consumeChallengeLua deletes the challenge only while it still holds the
// expected code, so a concurrent resend is never erased by a stale confirm.
// KEYS[1] = challenge key
// ARGV[1] = expected code
var consumeChallengeLua = redis.NewScript(`
local stored = redis.call('GET', KEYS[1])
if not stored then
  return {err='not_found'}
end
if stored ~= ARGV[1] then
  return {err='mismatch'}
end
redis.call('DEL', KEYS[1])
return 1
`)

// PhoneSnapshot is a point-in-time view of which records exist for a phone.
// The three reads are pipelined, not transactional.
type PhoneSnapshot struct {
	Registration string
	Registered   bool
	HasChallenge bool
	HasPassword  bool
}

type PhoneRecordStore struct {
	redis     redis.UniversalClient
	namespace string
}

func NewPhoneRecordStore(redisClient redis.UniversalClient, namespace string) *PhoneRecordStore {
	return &PhoneRecordStore{
		redis:     redisClient,
		namespace: namespace,
	}
}

func (s *PhoneRecordStore) key(kind, phone string) string {
	k := kind + "_" + phone
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

// RegistrationKey returns the Redis key of the registration record.
func (s *PhoneRecordStore) RegistrationKey(phone string) string {
	return s.key(registrationKind, phone)
}

// ChallengeKey returns the Redis key of the OTP challenge record.
func (s *PhoneRecordStore) ChallengeKey(phone string) string {
	return s.key(challengeKind, phone)
}

// PasswordKey returns the Redis key of the password hash record.
func (s *PhoneRecordStore) PasswordKey(phone string) string {
	return s.key(passwordKind, phone)
}

func (s *PhoneRecordStore) SaveRegistration(ctx context.Context, phone string, ttl time.Duration) error {
	return s.set(ctx, s.RegistrationKey(phone), phone, ttl)
}

func (s *PhoneRecordStore) Registration(ctx context.Context, phone string) (string, error) {
	return s.get(ctx, s.RegistrationKey(phone))
}

func (s *PhoneRecordStore) SaveChallenge(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.set(ctx, s.ChallengeKey(phone), code, ttl)
}

func (s *PhoneRecordStore) Challenge(ctx context.Context, phone string) (string, error) {
	return s.get(ctx, s.ChallengeKey(phone))
}

// ConsumeChallenge removes the challenge if and only if it still equals code.
func (s *PhoneRecordStore) ConsumeChallenge(ctx context.Context, phone, code string) error {
	result, err := consumeChallengeLua.Run(ctx, s.redis, []string{s.ChallengeKey(phone)}, code).Result()
	if err != nil {
		switch err.Error() {
		case "not_found":
			return ErrRecordNotFound
		case "mismatch":
			return ErrChallengeMismatch
		default:
			return fmt.Errorf("%w: %v", ErrRecordsUnavailable, err)
		}
	}

	if n, ok := result.(int64); !ok || n != 1 {
		return fmt.Errorf("%w: %v", ErrRecordsUnavailable, errUnexpectedLuaOutcome)
	}
	return nil
}

func (s *PhoneRecordStore) SavePasswordHash(ctx context.Context, phone, hash string) error {
	return s.set(ctx, s.PasswordKey(phone), hash, 0)
}

func (s *PhoneRecordStore) Snapshot(ctx context.Context, phone string) (PhoneSnapshot, error) {
	var (
		reg       *redis.StringCmd
		challenge *redis.IntCmd
		pass      *redis.IntCmd
	)

	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		reg = pipe.Get(ctx, s.RegistrationKey(phone))
		challenge = pipe.Exists(ctx, s.ChallengeKey(phone))
		pass = pipe.Exists(ctx, s.PasswordKey(phone))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return PhoneSnapshot{}, fmt.Errorf("%w: %v", ErrRecordsUnavailable, err)
	}

	var snap PhoneSnapshot
	value, regErr := reg.Result()
	switch {
	case regErr == nil:
		snap.Registration = value
		snap.Registered = true
	case !errors.Is(regErr, redis.Nil):
		return PhoneSnapshot{}, fmt.Errorf("%w: %v", ErrRecordsUnavailable, regErr)
	}
	snap.HasChallenge = challenge.Val() > 0
	snap.HasPassword = pass.Val() > 0

	return snap, nil
}

// Ping reports whether the backing Redis answers.
func (s *PhoneRecordStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordsUnavailable, err)
	}
	return nil
}

func (s *PhoneRecordStore) set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordsUnavailable, err)
	}
	return nil
}

func (s *PhoneRecordStore) get(ctx context.Context, key string) (string, error) {
	value, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrRecordNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRecordsUnavailable, err)
	}
	return value, nil
}
