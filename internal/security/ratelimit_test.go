package security_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/frahmantamala/practice-management/internal/security"
	"github.com/go-redis/redis/v8"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// rateLimiterBehaviour runs the same scenarios against any Store.
func rateLimiterBehaviour(newStore func() security.Store) {
	var (
		ctx     context.Context
		clock   *fakeClock
		limiter *security.RateLimiter
		t0      time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		t0 = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
		clock = &fakeClock{now: t0}
		limiter = security.NewRateLimiter(newStore(), discardLogger(),
			security.WithClock(clock.Now),
			security.WithPolicy("burst", security.Policy{MaxAttempts: 3, Window: time.Minute}),
			security.WithPolicy("strict", security.Policy{MaxAttempts: 2, Window: 10 * time.Minute, Lockout: 30 * time.Minute}),
		)
	})

	It("should count down remaining attempts and deny past the limit", func() {
		for want := 2; want >= 0; want-- {
			res, err := limiter.Check(ctx, "10.0.0.1", "burst")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Allowed).To(BeTrue())
			Expect(res.Remaining).To(Equal(want))
			clock.Advance(time.Second)
		}

		res, err := limiter.Check(ctx, "10.0.0.1", "burst")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeFalse())
		Expect(res.Locked()).To(BeFalse())
		Expect(res.ResetAt).To(BeTemporally("==", t0.Add(time.Minute)))
		Expect(res.RetryAfter).To(Equal(57 * time.Second))
	})

	It("should free slots as attempts leave the window", func() {
		for i := 0; i < 3; i++ {
			_, err := limiter.Check(ctx, "10.0.0.1", "burst")
			Expect(err).NotTo(HaveOccurred())
			clock.Advance(time.Second)
		}

		clock.Advance(58 * time.Second) // t0+61s: the first two attempts are outside the window
		res, err := limiter.Check(ctx, "10.0.0.1", "burst")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeTrue())
		Expect(res.Remaining).To(Equal(1))
	})

	It("should keep identifiers and limit types apart", func() {
		for i := 0; i < 3; i++ {
			_, _ = limiter.Check(ctx, "a", "burst")
		}
		res, err := limiter.Check(ctx, "b", "burst")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeTrue())

		res, err = limiter.Check(ctx, "a", "strict")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeTrue())
	})

	It("should lock out from the oldest attempt and hold the lock past the window", func() {
		_, _ = limiter.Check(ctx, "user@clinic.example", "strict")
		clock.Advance(time.Minute)
		_, _ = limiter.Check(ctx, "user@clinic.example", "strict")
		clock.Advance(time.Minute)

		res, err := limiter.Check(ctx, "user@clinic.example", "strict")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeFalse())
		Expect(res.LockedUntil).To(BeTemporally("==", t0.Add(30*time.Minute)))
		Expect(res.RetryAfter).To(Equal(28 * time.Minute))

		clock.Advance(18 * time.Minute) // t0+20m, window empty but lock still active
		res, err = limiter.Check(ctx, "user@clinic.example", "strict")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeFalse())
		Expect(res.Locked()).To(BeTrue())

		clock.Advance(11 * time.Minute) // t0+31m
		res, err = limiter.Check(ctx, "user@clinic.example", "strict")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeTrue())
		Expect(res.Remaining).To(Equal(1))
	})

	It("should start over once a lockout no longer than the window expires", func() {
		id := "user@clinic.example"
		for i := 0; i < 3; i++ {
			res, err := limiter.Check(ctx, id, security.LimitPasswordReset)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Allowed).To(BeTrue())
			clock.Advance(10 * time.Minute)
		}

		// t0+30m: the fourth request locks from the oldest attempt.
		res, err := limiter.Check(ctx, id, security.LimitPasswordReset)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeFalse())
		Expect(res.LockedUntil).To(BeTemporally("==", t0.Add(time.Hour)))

		clock.Advance(31 * time.Minute) // t0+61m, attempts at +10m and +20m are still in the window
		res, err = limiter.Check(ctx, id, security.LimitPasswordReset)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeTrue())
		Expect(res.Remaining).To(Equal(2))

		clock.Advance(time.Minute)
		res, err = limiter.Check(ctx, id, security.LimitPasswordReset)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeTrue())
		Expect(res.Locked()).To(BeFalse())
		Expect(res.Remaining).To(Equal(1))
	})

	It("should clear state on reset", func() {
		for i := 0; i < 3; i++ {
			_, _ = limiter.Check(ctx, "u", "strict")
		}
		Expect(limiter.Reset(ctx, "u", "strict")).To(Succeed())

		res, err := limiter.Check(ctx, "u", "strict")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeTrue())
		Expect(res.Remaining).To(Equal(1))
	})

	It("should reject unknown limit types", func() {
		_, err := limiter.Check(ctx, "u", "nope")
		Expect(err).To(MatchError(ContainSubstring("unknown rate limit type")))
	})
}

var _ = Describe("RateLimiter", func() {
	It("should ignore policies that cannot be enforced", func() {
		limiter := security.NewRateLimiter(security.NewMemoryStore(), discardLogger(),
			security.WithPolicy("burst", security.Policy{MaxAttempts: 0, Window: time.Minute}),
			security.WithPolicy("instant", security.Policy{MaxAttempts: 3}),
			security.WithPolicy(security.LimitLogin, security.Policy{MaxAttempts: -1, Window: time.Minute}),
		)

		_, err := limiter.Check(context.Background(), "u", "burst")
		Expect(err).To(MatchError(ContainSubstring("unknown rate limit type")))
		_, ok := limiter.Policy("instant")
		Expect(ok).To(BeFalse())

		p, ok := limiter.Policy(security.LimitLogin)
		Expect(ok).To(BeTrue())
		Expect(p).To(Equal(security.DefaultPolicies()[security.LimitLogin]))
	})

	Context("with the memory store", func() {
		rateLimiterBehaviour(func() security.Store { return security.NewMemoryStore() })

		It("should not lose updates under concurrent callers", func() {
			limiter := security.NewRateLimiter(security.NewMemoryStore(), discardLogger(),
				security.WithPolicy("burst", security.Policy{MaxAttempts: 10, Window: time.Minute}))

			var allowed int64
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					res, err := limiter.Check(context.Background(), "shared", "burst")
					Expect(err).NotTo(HaveOccurred())
					if res.Allowed {
						atomic.AddInt64(&allowed, 1)
					}
				}()
			}
			wg.Wait()
			Expect(allowed).To(Equal(int64(10)))
		})

		It("should sweep expired buckets", func() {
			store := security.NewMemoryStore()
			now := time.Now()
			_, err := store.Hit(context.Background(), "k", now, security.Policy{MaxAttempts: 1, Window: time.Minute})
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Sweep(now.Add(30 * time.Second))).To(Equal(0))
			Expect(store.Sweep(now.Add(time.Minute))).To(Equal(1))
			Expect(store.Len()).To(Equal(0))
		})
	})

	Context("with the redis store", func() {
		var mr *miniredis.Miniredis

		BeforeEach(func() {
			var err error
			mr, err = miniredis.Run()
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(mr.Close)
		})

		rateLimiterBehaviour(func() security.Store {
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			DeferCleanup(client.Close)
			return security.NewRedisStore(client, "test:ratelimit:")
		})

		It("should namespace keys with the prefix", func() {
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer client.Close()
			store := security.NewRedisStore(client, "rl:")

			_, err := store.Hit(context.Background(), "ip:api", time.Now(), security.Policy{MaxAttempts: 5, Window: time.Minute})
			Expect(err).NotTo(HaveOccurred())
			Expect(mr.Exists("rl:ip:api")).To(BeTrue())
		})
	})
})
