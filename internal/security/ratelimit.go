package security

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	LimitLogin         = "login"
	LimitAPI           = "api"
	LimitPasswordReset = "password_reset"
	LimitRegistration  = "registration"
)

// Policy bounds attempts per sliding window. A non-zero Lockout blocks the key
// until oldest-attempt + Lockout once MaxAttempts is reached.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		LimitLogin:         {MaxAttempts: 5, Window: 15 * time.Minute, Lockout: 30 * time.Minute},
		LimitAPI:           {MaxAttempts: 100, Window: time.Minute},
		LimitPasswordReset: {MaxAttempts: 3, Window: time.Hour, Lockout: time.Hour},
		LimitRegistration:  {MaxAttempts: 3, Window: time.Hour},
	}
}

type Result struct {
	Allowed     bool          `json:"allowed"`
	Remaining   int           `json:"remaining"`
	ResetAt     time.Time     `json:"reset_at"`
	LockedUntil time.Time     `json:"locked_until"`
	RetryAfter  time.Duration `json:"-"`
}

func (r Result) Locked() bool {
	return !r.LockedUntil.IsZero()
}

// Store applies one attempt for key atomically.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, p Policy) (Result, error)
	Reset(ctx context.Context, key string) error
}

type RateLimiter struct {
	store    Store
	policies map[string]Policy
	now      func() time.Time
	logger   *slog.Logger
}

type LimiterOption func(*RateLimiter)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) LimiterOption {
	return func(rl *RateLimiter) { rl.now = now }
}

// WithPolicy overrides or adds the policy for limitType.
func WithPolicy(limitType string, p Policy) LimiterOption {
	return func(rl *RateLimiter) { rl.policies[limitType] = p }
}

func NewRateLimiter(store Store, logger *slog.Logger, opts ...LimiterOption) *RateLimiter {
	rl := &RateLimiter{
		store:    store,
		policies: DefaultPolicies(),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(rl)
	}

	// A policy without attempts or window cannot be enforced; fall back to
	// the built-in one, or drop the type.
	defaults := DefaultPolicies()
	for name, p := range rl.policies {
		if p.MaxAttempts > 0 && p.Window > 0 {
			continue
		}
		if def, ok := defaults[name]; ok {
			rl.policies[name] = def
		} else {
			delete(rl.policies, name)
		}
		if logger != nil {
			logger.Warn("ignoring invalid rate limit policy",
				"limit_type", name, "max_attempts", p.MaxAttempts, "window", p.Window)
		}
	}
	return rl
}

func rateLimitKey(identifier, limitType string) string {
	return identifier + ":" + limitType
}

// Check records one attempt for identifier under limitType and reports
// whether it is allowed.
func (rl *RateLimiter) Check(ctx context.Context, identifier, limitType string) (Result, error) {
	p, ok := rl.policies[limitType]
	if !ok {
		return Result{}, fmt.Errorf("unknown rate limit type %q", limitType)
	}

	now := rl.now()
	res, err := rl.store.Hit(ctx, rateLimitKey(identifier, limitType), now, p)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit store: %w", err)
	}

	if !res.Allowed {
		retryAt := res.ResetAt
		if res.Locked() {
			retryAt = res.LockedUntil
		}
		if d := retryAt.Sub(now); d > 0 {
			res.RetryAfter = d
		}
		rl.logger.WarnContext(ctx, "rate limit exceeded",
			"identifier", identifier,
			"limit_type", limitType,
			"locked", res.Locked(),
			"retry_after", res.RetryAfter)
	}
	return res, nil
}

func (rl *RateLimiter) Reset(ctx context.Context, identifier, limitType string) error {
	return rl.store.Reset(ctx, rateLimitKey(identifier, limitType))
}

// Policy returns the active policy for limitType.
func (rl *RateLimiter) Policy(limitType string) (Policy, bool) {
	p, ok := rl.policies[limitType]
	return p, ok
}
