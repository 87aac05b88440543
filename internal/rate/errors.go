package rate

import "errors"

var (
	// ErrRateLimited is returned when a window budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps counter failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
