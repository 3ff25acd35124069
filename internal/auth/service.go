package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/activity"
	"github.com/frahmantamala/practice-management/internal/role"
	"github.com/frahmantamala/practice-management/internal/security"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	// GetCredentials returns internal.ErrUserNotFound for unknown emails.
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	GetUser(ctx context.Context, userID int64) (*User, error)
	RecordLogin(ctx context.Context, userID int64, ip string, at time.Time) error
}

// PermissionResolver computes a user's effective module levels.
type PermissionResolver interface {
	EffectivePermissions(ctx context.Context, userID int64) (map[role.Module]role.Level, error)
}

// RateLimiter is the subset of the security service login throttling needs.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, identifier, limitType string) (security.Result, error)
	ResetRateLimit(ctx context.Context, identifier, limitType string) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo        Repository
	tokens      TokenGenerator
	permissions PermissionResolver
	limiter     RateLimiter
	recorder    activity.Recorder
	logger      *slog.Logger
	bcryptCost  int
	accessTTL   time.Duration
	now         func() time.Time
}

type Option func(*Service)

func WithRateLimiter(l RateLimiter) Option { return func(s *Service) { s.limiter = l } }

func WithRecorder(r activity.Recorder) Option { return func(s *Service) { s.recorder = r } }

func WithBcryptCost(cost int) Option { return func(s *Service) { s.bcryptCost = cost } }

func WithAccessTTL(d time.Duration) Option { return func(s *Service) { s.accessTTL = d } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService creates a new auth service
func NewService(repo Repository, tokens TokenGenerator, permissions PermissionResolver, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		tokens:      tokens,
		permissions: permissions,
		logger:      logger,
		bcryptCost:  bcrypt.DefaultCost,
		accessTTL:   15 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the per-email throttle, verifies the password and issues
// tokens. A successful login clears the throttle.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	if s.limiter != nil {
		res, err := s.limiter.CheckRateLimit(ctx, dto.Email, security.LimitLogin)
		if err != nil {
			return AuthTokens{}, fmt.Errorf("failed to check login rate limit: %w", err)
		}
		if !res.Allowed {
			return AuthTokens{}, tooManyAttempts(res)
		}
	}

	creds, err := s.repo.GetCredentials(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.loginFailed(ctx, nil, dto.Email, "unknown email")
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		return AuthTokens{}, fmt.Errorf("failed to load credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		s.loginFailed(ctx, &creds.UserID, dto.Email, "wrong password")
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !creds.IsActive {
		s.loginFailed(ctx, &creds.UserID, dto.Email, "inactive account")
		return AuthTokens{}, internal.ErrUserInactive
	}

	if s.limiter != nil {
		if err := s.limiter.ResetRateLimit(ctx, dto.Email, security.LimitLogin); err != nil {
			s.logger.WarnContext(ctx, "failed to reset login rate limit", "error", err)
		}
	}

	now := s.now()
	client := internal.ClientFromContext(ctx)
	if err := s.repo.RecordLogin(ctx, creds.UserID, client.IP, now); err != nil {
		return AuthTokens{}, fmt.Errorf("failed to record login: %w", err)
	}

	tokens, err := s.issue(creds.UserID, creds.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	s.record(ctx, activity.Entry{
		UserID:      &creds.UserID,
		Action:      activity.ActionLogin,
		Module:      string(role.ModuleUsers),
		ObjectType:  "user",
		ObjectID:    strconv.FormatInt(creds.UserID, 10),
		Description: "signed in",
		Timestamp:   now,
	})
	s.logger.InfoContext(ctx, "user logged in", "user_id", creds.UserID)
	return tokens, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}
	if !u.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}
	return s.issue(u.ID, u.Email)
}

// Logout records the sign-out. Tokens are stateless and expire on their own.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return internal.ErrInvalidToken
	}

	s.record(ctx, activity.Entry{
		UserID:      &id,
		Action:      activity.ActionLogout,
		Module:      string(role.ModuleUsers),
		ObjectType:  "user",
		ObjectID:    claims.UserID,
		Description: "signed out",
	})
	return nil
}

// Authenticate resolves an access token to an active user with effective
// permissions loaded.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*User, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	u, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}

	perms, err := s.permissions.EffectivePermissions(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}
	u.Permissions = perms
	return u, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) loadUser(ctx context.Context, rawID string) (*User, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) issue(userID int64, email string) (AuthTokens, error) {
	id := strconv.FormatInt(userID, 10)
	access, err := s.tokens.GenerateAccessToken(id, email)
	if err != nil {
		return AuthTokens{}, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(id, email)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *Service) loginFailed(ctx context.Context, userID *int64, email, reason string) {
	s.logger.WarnContext(ctx, "login failed", "email", email, "reason", reason)
	s.record(ctx, activity.Entry{
		UserID:      userID,
		Action:      activity.ActionLoginFailed,
		Module:      string(role.ModuleUsers),
		ObjectType:  "user",
		Description: reason,
		Metadata:    map[string]any{"email": email},
	})
}

func (s *Service) record(ctx context.Context, e activity.Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to record activity", "action", e.Action, "error", err)
	}
}

// RetryAfterDetails is attached to rate limited login errors.
type RetryAfterDetails struct {
	RetryAfterSeconds int `json:"retry_after_seconds"`
}

func tooManyAttempts(res security.Result) *internal.AppError {
	err := internal.NewRateLimitedError("Too many login attempts, try again later")
	err.Details = RetryAfterDetails{RetryAfterSeconds: int(math.Ceil(res.RetryAfter.Seconds()))}
	return err
}
