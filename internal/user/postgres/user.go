package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/practice-management/internal"
	roleDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/user"
	"github.com/frahmantamala/practice-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User, roleName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rl roleDatamodel.UserRole
		if err := tx.Where("name = ? AND is_active = ?", roleName, true).First(&rl).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrRoleNotFound
			}
			return err
		}

		var taken int64
		if err := tx.Model(&userDatamodel.User{}).Where("email = ?", u.Email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return internal.ErrEmailTaken
		}

		u.RoleID = &rl.ID
		row := user.ToDataModel(u)
		if err := tx.Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrEmailTaken
			}
			return err
		}

		row.Role = &rl
		*u = *user.FromDataModel(row)
		return nil
	})
}
