package activity

import (
	"context"
	"time"

	activityDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/activity"
	"github.com/frahmantamala/practice-management/internal/core/events"
	"gorm.io/datatypes"
)

const (
	ActionLogin            = "login"
	ActionLoginFailed      = "login_failed"
	ActionLogout           = "logout"
	ActionView             = "view"
	ActionCreate           = "create"
	ActionUpdate           = "update"
	ActionDelete           = "delete"
	ActionRoleChange       = "role_change"
	ActionPermissionGrant  = "permission_grant"
	ActionPermissionRevoke = "permission_revoke"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type Entry struct {
	ID          int64          `json:"id"`
	UserID      *int64         `json:"user_id,omitempty"`
	Action      string         `json:"action"`
	Module      string         `json:"module,omitempty"`
	ObjectType  string         `json:"object_type,omitempty"`
	ObjectID    string         `json:"object_id,omitempty"`
	Description string         `json:"description,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

type Filter struct {
	UserID *int64
	Module string
	Limit  int
	Offset int
}

// Recorder appends to the audit trail.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Repository has no update or delete: the log is append-only.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) ([]Entry, int64, error)
}

func ToDataModel(e *Entry) *activityDatamodel.UserActivityLog {
	row := &activityDatamodel.UserActivityLog{
		ID:          e.ID,
		UserID:      e.UserID,
		Action:      e.Action,
		Module:      e.Module,
		ObjectType:  e.ObjectType,
		ObjectID:    e.ObjectID,
		Description: e.Description,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
		Timestamp:   e.Timestamp,
	}
	if len(e.Metadata) > 0 {
		row.Metadata = datatypes.JSONMap(e.Metadata)
	}
	return row
}

func FromDataModel(row *activityDatamodel.UserActivityLog) Entry {
	return Entry{
		ID:          row.ID,
		UserID:      row.UserID,
		Action:      row.Action,
		Module:      row.Module,
		ObjectType:  row.ObjectType,
		ObjectID:    row.ObjectID,
		Description: row.Description,
		IPAddress:   row.IPAddress,
		UserAgent:   row.UserAgent,
		Metadata:    map[string]any(row.Metadata),
		Timestamp:   row.Timestamp,
	}
}

func toPayload(e Entry) events.ActivityPayload {
	return events.ActivityPayload{
		UserID:      e.UserID,
		Action:      e.Action,
		Module:      e.Module,
		ObjectType:  e.ObjectType,
		ObjectID:    e.ObjectID,
		Description: e.Description,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
		Metadata:    e.Metadata,
	}
}

func fromPayload(p events.ActivityPayload, at time.Time) Entry {
	return Entry{
		UserID:      p.UserID,
		Action:      p.Action,
		Module:      p.Module,
		ObjectType:  p.ObjectType,
		ObjectID:    p.ObjectID,
		Description: p.Description,
		IPAddress:   p.IPAddress,
		UserAgent:   p.UserAgent,
		Metadata:    p.Metadata,
		Timestamp:   at,
	}
}
