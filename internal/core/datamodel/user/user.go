package user

import (
	"time"

	"github.com/frahmantamala/practice-management/internal/core/datamodel/role"
)

// Capabilities are the per-user boolean switches stored next to the role.
type Capabilities struct {
	CanAccessPatients       bool `gorm:"column:can_access_patients;not null;default:false"`
	CanAccessAppointments   bool `gorm:"column:can_access_appointments;not null;default:false"`
	CanAccessFinance        bool `gorm:"column:can_access_finance;not null;default:false"`
	CanAccessInventory      bool `gorm:"column:can_access_inventory;not null;default:false"`
	CanAccessReports        bool `gorm:"column:can_access_reports;not null;default:false"`
	CanAccessSettings       bool `gorm:"column:can_access_settings;not null;default:false"`
	CanManageUsers          bool `gorm:"column:can_manage_users;not null;default:false"`
	CanManageRoles          bool `gorm:"column:can_manage_roles;not null;default:false"`
	CanViewAuditLogs        bool `gorm:"column:can_view_audit_logs;not null;default:false"`
	CanExportData           bool `gorm:"column:can_export_data;not null;default:false"`
	CanDeleteRecords        bool `gorm:"column:can_delete_records;not null;default:false"`
	CanApprovePayments      bool `gorm:"column:can_approve_payments;not null;default:false"`
	CanViewMedicalRecords   bool `gorm:"column:can_view_medical_records;not null;default:false"`
	CanEditMedicalRecords   bool `gorm:"column:can_edit_medical_records;not null;default:false"`
	CanScheduleAppointments bool `gorm:"column:can_schedule_appointments;not null;default:false"`
}

type User struct {
	ID           int64          `gorm:"primaryKey"`
	Email        string         `gorm:"column:email;uniqueIndex;not null"`
	Name         string         `gorm:"column:name;not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Phone        string         `gorm:"column:phone"`
	Department   string         `gorm:"column:department"`
	IsActive     bool           `gorm:"column:is_active;not null"`
	RoleID       *int64         `gorm:"column:role_id;index"`
	Role         *role.UserRole `gorm:"foreignKey:RoleID"`
	LastLoginIP  *string        `gorm:"column:last_login_ip"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	Capabilities `gorm:"embedded"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
