package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/practice-management/internal"
	roleDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/user"
	"github.com/frahmantamala/practice-management/internal/role"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleRepository implements role.Repository using GORM
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) EnsureRole(ctx context.Context, rl *role.Role) (bool, error) {
	row := role.ToDataModel(rl)
	res := r.db.WithContext(ctx).
		Where("name = ?", rl.Name).
		FirstOrCreate(row)
	if res.Error != nil {
		return false, res.Error
	}
	*rl = *role.FromDataModel(row)
	return res.RowsAffected > 0, nil
}

func (r *RoleRepository) ListRoles(ctx context.Context) ([]role.Role, error) {
	var rows []roleDatamodel.UserRole
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]role.Role, 0, len(rows))
	for i := range rows {
		out = append(out, *role.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*role.Role, error) {
	var row roleDatamodel.UserRole
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}
	return role.FromDataModel(&row), nil
}

func (r *RoleRepository) SetUserRole(ctx context.Context, userID, roleID int64) error {
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *RoleRepository) AssignRoleToAll(ctx context.Context, roleID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&userDatamodel.User{}).
		Update("role_id", roleID)
	return res.RowsAffected, res.Error
}

func (r *RoleRepository) SaveGrant(ctx context.Context, g *role.Grant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&userDatamodel.User{}).Where("id = ?", g.UserID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return internal.ErrUserNotFound
		}

		row := role.GrantToDataModel(g)
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "module"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"permission_level", "granted_by_id", "granted_at", "expires_at", "is_active",
			}),
		}).Create(row).Error
		if err != nil {
			return err
		}

		var stored roleDatamodel.ModulePermission
		if err := tx.Where("user_id = ? AND module = ?", g.UserID, string(g.Module)).First(&stored).Error; err != nil {
			return err
		}
		*g = role.GrantFromDataModel(&stored)

		return tx.Model(&userDatamodel.User{}).
			Where("id = ?", g.UserID).
			Update(role.FlagColumn(g.Module), true).Error
	})
}

func (r *RoleRepository) RevokeGrant(ctx context.Context, userID int64, m role.Module) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&roleDatamodel.ModulePermission{}).
			Where("user_id = ? AND module = ? AND is_active = ?", userID, string(m), true).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrPermissionNotFound
		}

		return tx.Model(&userDatamodel.User{}).
			Where("id = ?", userID).
			Update(role.FlagColumn(m), false).Error
	})
}

func (r *RoleRepository) ListGrants(ctx context.Context, userID int64) ([]role.Grant, error) {
	var rows []roleDatamodel.ModulePermission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("module").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]role.Grant, 0, len(rows))
	for i := range rows {
		out = append(out, role.GrantFromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *RoleRepository) LoadAccess(ctx context.Context, userID int64) (*role.Access, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	grants, err := r.ListGrants(ctx, userID)
	if err != nil {
		return nil, err
	}

	access := &role.Access{
		UserID:     u.ID,
		UserActive: u.IsActive,
		Grants:     grants,
		Flags:      CapabilityFlags(u.Capabilities),
	}
	if u.Role != nil {
		access.Role = role.FromDataModel(u.Role)
	}
	return access, nil
}

// CapabilityFlags reads the module-level switches off a users row.
func CapabilityFlags(c userDatamodel.Capabilities) map[role.Module]bool {
	return map[role.Module]bool{
		role.ModulePatients:     c.CanAccessPatients,
		role.ModuleAppointments: c.CanAccessAppointments,
		role.ModuleFinance:      c.CanAccessFinance,
		role.ModuleInventory:    c.CanAccessInventory,
		role.ModuleReports:      c.CanAccessReports,
		role.ModuleSettings:     c.CanAccessSettings,
		role.ModuleUsers:        c.CanManageUsers,
	}
}
