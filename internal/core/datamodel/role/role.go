package role

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole struct {
	ID          int64             `gorm:"primaryKey"`
	Name        string            `gorm:"column:name;size:50;uniqueIndex;not null"`
	Description string            `gorm:"column:description"`
	Permissions datatypes.JSONMap `gorm:"column:permissions"`
	IsActive    bool              `gorm:"column:is_active;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserRole) TableName() string { return "user_roles" }

type ModulePermission struct {
	ID              int64      `gorm:"primaryKey"`
	UserID          int64      `gorm:"column:user_id;not null;uniqueIndex:idx_module_permissions_user_module"`
	Module          string     `gorm:"column:module;size:20;not null;uniqueIndex:idx_module_permissions_user_module"`
	PermissionLevel string     `gorm:"column:permission_level;size:10;not null"`
	GrantedByID     *int64     `gorm:"column:granted_by_id"`
	GrantedAt       time.Time  `gorm:"column:granted_at;not null"`
	ExpiresAt       *time.Time `gorm:"column:expires_at"`
	IsActive        bool       `gorm:"column:is_active;not null"`
}

func (ModulePermission) TableName() string { return "module_permissions" }
