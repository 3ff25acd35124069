package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/auth"
	userDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "email", "password_hash", "is_active").
		Where("email = ?", email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Credentials{
		UserID:       u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}, nil
}

func (r *Repository) GetUser(ctx context.Context, userID int64) (*auth.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	out := &auth.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Department:  u.Department,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
	if u.Role != nil {
		out.Role = u.Role.Name
	}
	return out, nil
}

func (r *Repository) RecordLogin(ctx context.Context, userID int64, ip string, at time.Time) error {
	updates := map[string]any{"last_login_at": at}
	if ip != "" {
		updates["last_login_ip"] = ip
	}
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}
