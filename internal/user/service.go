package user

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/activity"
	"github.com/frahmantamala/practice-management/internal/role"
	"github.com/frahmantamala/practice-management/internal/security"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	// Create resolves roleName, rejects a taken email and inserts u.
	Create(ctx context.Context, u *User, roleName string) error
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo     Repository
	hasher   PasswordHasher
	recorder activity.Recorder
	logger   *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// Create enforces password strength, hashes the password and stores an active
// user. Users created without a role get the default one.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	strength := security.CheckPasswordStrength(req.Password)
	if !strength.IsValid {
		return nil, weakPassword(strength)
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roleName := req.Role
	if roleName == "" {
		roleName = role.DefaultRoleName
	}

	u := &User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Phone:        req.Phone,
		Department:   req.Department,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u, roleName); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	if s.recorder != nil {
		err := s.recorder.Record(ctx, activity.Entry{
			Action:      activity.ActionCreate,
			Module:      string(role.ModuleUsers),
			ObjectType:  "user",
			ObjectID:    strconv.FormatInt(u.ID, 10),
			Description: "created user " + u.Email,
			Metadata:    map[string]any{"role": u.Role},
		})
		if err != nil {
			s.logger.WarnContext(ctx, "failed to record activity", "action", activity.ActionCreate, "error", err)
		}
	}
	return u, nil
}

func weakPassword(strength security.PasswordStrength) *internal.AppError {
	details := make([]internal.ValidationError, 0, len(strength.Feedback))
	for _, msg := range strength.Feedback {
		details = append(details, internal.ValidationError{
			Field:   "password",
			Message: msg,
			Code:    string(internal.ErrCodeWeakPassword),
		})
	}
	return internal.NewValidationError("Password is too weak", internal.ErrCodeWeakPassword).
		WithDetails(internal.ValidationErrors{Errors: details})
}
