package security

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	attempts    []time.Time
	lockedUntil time.Time
	expiresAt   time.Time
}

func (b *bucket) hit(now time.Time, p Policy) Result {
	if now.Before(b.lockedUntil) {
		return Result{ResetAt: b.lockedUntil, LockedUntil: b.lockedUntil}
	}
	if !b.lockedUntil.IsZero() {
		// An expired lock starts the key over.
		b.attempts = b.attempts[:0]
		b.lockedUntil = time.Time{}
	}

	cutoff := now.Add(-p.Window)
	kept := b.attempts[:0]
	for _, t := range b.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.attempts = kept

	if len(b.attempts) >= p.MaxAttempts {
		oldest := b.attempts[0]
		if p.Lockout <= 0 {
			return Result{ResetAt: oldest.Add(p.Window)}
		}
		until := oldest.Add(p.Lockout)
		if now.Before(until) {
			b.lockedUntil = until
			b.expiresAt = until
			return Result{ResetAt: until, LockedUntil: until}
		}
		b.attempts = b.attempts[:0]
	}

	b.attempts = append(b.attempts, now)
	b.expiresAt = now.Add(p.Window)
	return Result{
		Allowed:   true,
		Remaining: p.MaxAttempts - len(b.attempts),
		ResetAt:   b.attempts[0].Add(p.Window),
	}
}

// MemoryStore keeps attempts in this process only. Use RedisStore when more
// than one instance serves traffic.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket)}
}

func (s *MemoryStore) Hit(_ context.Context, key string, now time.Time, p Policy) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{}
		s.buckets[key] = b
	}
	return b.hit(now, p), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// Sweep drops buckets with no live attempts or lock.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, b := range s.buckets {
		if !now.Before(b.expiresAt) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// StartCleanup sweeps every interval until ctx is done.
func (s *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Sweep(now)
			}
		}
	}()
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
