package role

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/activity"
)

type Repository interface {
	// EnsureRole creates r unless a role with the same name exists. r is
	// filled from the stored row either way.
	EnsureRole(ctx context.Context, r *Role) (created bool, err error)
	ListRoles(ctx context.Context) ([]Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	SetUserRole(ctx context.Context, userID, roleID int64) error
	AssignRoleToAll(ctx context.Context, roleID int64) (int64, error)

	// SaveGrant upserts on (user, module) and raises the module's capability
	// flag in the same transaction.
	SaveGrant(ctx context.Context, g *Grant) error
	// RevokeGrant deactivates the grant and clears the flag in one transaction.
	RevokeGrant(ctx context.Context, userID int64, m Module) error
	ListGrants(ctx context.Context, userID int64) ([]Grant, error)
	LoadAccess(ctx context.Context, userID int64) (*Access, error)
}

type Service struct {
	repo     Repository
	recorder activity.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, recorder activity.Recorder, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, recorder: recorder, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureDefaultRoles get-or-creates the fixed roles and reports how many were
// new.
func (s *Service) EnsureDefaultRoles(ctx context.Context) (int, error) {
	created := 0
	for _, r := range DefaultRoles() {
		r := r
		isNew, err := s.repo.EnsureRole(ctx, &r)
		if err != nil {
			return created, fmt.Errorf("failed to ensure role %s: %w", r.Name, err)
		}
		if isNew {
			created++
			s.logger.InfoContext(ctx, "role created", "role", r.Name)
		}
	}
	return created, nil
}

// AssignDefaultRoleToAll points every user at the default role, replacing any
// previous assignment.
func (s *Service) AssignDefaultRoleToAll(ctx context.Context) (int64, error) {
	def, err := s.repo.GetRoleByName(ctx, DefaultRoleName)
	if err != nil {
		return 0, fmt.Errorf("failed to load default role: %w", err)
	}
	n, err := s.repo.AssignRoleToAll(ctx, def.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to assign default role: %w", err)
	}
	s.logger.WarnContext(ctx, "default role assigned to all users", "role", def.Name, "users", n)
	return n, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (s *Service) AssignRole(ctx context.Context, userID int64, roleName string) (*Role, error) {
	r, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if !r.IsActive {
		return nil, internal.NewValidationFieldError("role", "role is inactive", internal.ErrCodeValidationFailed)
	}
	if err := s.repo.SetUserRole(ctx, userID, r.ID); err != nil {
		return nil, err
	}

	s.record(ctx, activity.Entry{
		Action:      activity.ActionRoleChange,
		Module:      string(ModuleUsers),
		ObjectType:  "user",
		ObjectID:    strconv.FormatInt(userID, 10),
		Description: "role set to " + r.Name,
	})
	return r, nil
}

type GrantInput struct {
	UserID    int64
	Module    string
	Level     string
	ExpiresAt *time.Time
}

func (s *Service) GrantPermission(ctx context.Context, in GrantInput) (*Grant, error) {
	m, err := ParseModule(in.Module)
	if err != nil {
		return nil, err
	}
	l, err := ParseLevel(in.Level)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, internal.NewValidationFieldError("expires_at", "expires_at must be in the future", internal.ErrCodeInvalidDate)
	}

	g := &Grant{
		UserID:    in.UserID,
		Module:    m,
		Level:     l,
		GrantedAt: now,
		ExpiresAt: in.ExpiresAt,
		IsActive:  true,
	}
	if actor, ok := internal.ActorID(ctx); ok {
		g.GrantedByID = &actor
	}

	if err := s.repo.SaveGrant(ctx, g); err != nil {
		return nil, err
	}

	meta := map[string]any{"permission_level": string(l)}
	if in.ExpiresAt != nil {
		meta["expires_at"] = in.ExpiresAt.UTC().Format(time.RFC3339)
	}
	s.record(ctx, activity.Entry{
		Action:      activity.ActionPermissionGrant,
		Module:      string(m),
		ObjectType:  "user",
		ObjectID:    strconv.FormatInt(in.UserID, 10),
		Description: fmt.Sprintf("granted %s on %s", l, m),
		Metadata:    meta,
	})
	return g, nil
}

func (s *Service) RevokePermission(ctx context.Context, userID int64, module string) error {
	m, err := ParseModule(module)
	if err != nil {
		return err
	}
	if err := s.repo.RevokeGrant(ctx, userID, m); err != nil {
		return err
	}

	s.record(ctx, activity.Entry{
		Action:      activity.ActionPermissionRevoke,
		Module:      string(m),
		ObjectType:  "user",
		ObjectID:    strconv.FormatInt(userID, 10),
		Description: "revoked access to " + string(m),
	})
	return nil
}

func (s *Service) ListPermissions(ctx context.Context, userID int64) ([]Grant, error) {
	grants, err := s.repo.ListGrants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	return grants, nil
}

// HasModuleAccess checks the user's grants, then role, then capability flags.
func (s *Service) HasModuleAccess(ctx context.Context, userID int64, m Module, required Level) (bool, error) {
	access, err := s.repo.LoadAccess(ctx, userID)
	if err != nil {
		return false, err
	}
	return access.Allows(m, required, s.now()), nil
}

func (s *Service) EffectivePermissions(ctx context.Context, userID int64) (map[Module]Level, error) {
	access, err := s.repo.LoadAccess(ctx, userID)
	if err != nil {
		return nil, err
	}
	return access.Effective(s.now()), nil
}

// record never fails the caller: the change has already been committed.
func (s *Service) record(ctx context.Context, e activity.Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to record activity", "action", e.Action, "error", err)
	}
}
