package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/user"
	"github.com/frahmantamala/practice-management/internal/role"
)

// User represents the internal user model
type User struct {
	ID           int64                      `json:"id"`
	Email        string                     `json:"email"`
	Name         string                     `json:"name"`
	PasswordHash string                     `json:"-"` // Never expose password hash
	Phone        string                     `json:"phone,omitempty"`
	Department   string                     `json:"department,omitempty"`
	IsActive     bool                       `json:"is_active"`
	RoleID       *int64                     `json:"-"`
	Role         string                     `json:"role,omitempty"`
	LastLoginAt  *time.Time                 `json:"last_login_at,omitempty"`
	Permissions  map[role.Module]role.Level `json:"permissions,omitempty"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Department:   u.Department,
		IsActive:     u.IsActive,
		RoleID:       u.RoleID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	out := &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Department:   u.Department,
		IsActive:     u.IsActive,
		RoleID:       u.RoleID,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Role != nil {
		out.Role = u.Role.Name
	}
	return out
}
