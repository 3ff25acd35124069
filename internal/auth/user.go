package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/practice-management/internal/role"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// User is the authenticated principal attached to a request.
type User struct {
	ID          int64                     `json:"id"`
	Email       string                    `json:"email"`
	Name        string                    `json:"name"`
	Department  string                    `json:"department,omitempty"`
	IsActive    bool                      `json:"is_active"`
	Role        string                    `json:"role,omitempty"`
	LastLoginAt *time.Time                `json:"last_login_at,omitempty"`
	Permissions map[role.Module]role.Level `json:"permissions"`
}

// Can reports whether the user's effective level on m covers required.
func (u *User) Can(m role.Module, required role.Level) bool {
	if u == nil || !u.IsActive {
		return false
	}
	return u.Permissions[m].Covers(required)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// Credentials is what login needs from storage.
type Credentials struct {
	UserID       int64
	Email        string
	PasswordHash string
	IsActive     bool
}
