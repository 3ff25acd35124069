package security

import (
	"context"
)

// Service exposes the rate limiter to auth and the HTTP middleware. Input
// sanitizing and password checks are plain package functions.
type Service struct {
	limiter *RateLimiter
}

func NewService(limiter *RateLimiter) *Service {
	return &Service{limiter: limiter}
}

func (s *Service) CheckRateLimit(ctx context.Context, identifier, limitType string) (Result, error) {
	return s.limiter.Check(ctx, identifier, limitType)
}

func (s *Service) ResetRateLimit(ctx context.Context, identifier, limitType string) error {
	return s.limiter.Reset(ctx, identifier, limitType)
}
