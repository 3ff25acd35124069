package activity

import (
	"time"

	"gorm.io/datatypes"
)

// UserActivityLog rows are insert-only.
type UserActivityLog struct {
	ID          int64             `gorm:"primaryKey"`
	UserID      *int64            `gorm:"column:user_id;index"`
	Action      string            `gorm:"column:action;size:50;not null;index"`
	Module      string            `gorm:"column:module;size:20;index"`
	ObjectType  string            `gorm:"column:object_type;size:50"`
	ObjectID    string            `gorm:"column:object_id;size:64"`
	Description string            `gorm:"column:description"`
	IPAddress   string            `gorm:"column:ip_address;size:45"`
	UserAgent   string            `gorm:"column:user_agent"`
	Metadata    datatypes.JSONMap `gorm:"column:metadata"`
	Timestamp   time.Time         `gorm:"column:timestamp;not null;index"`
}

func (UserActivityLog) TableName() string { return "user_activity_logs" }
