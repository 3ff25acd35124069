package role

import (
	"time"

	"github.com/frahmantamala/practice-management/internal"
	roleDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/role"
	"gorm.io/datatypes"
)

type Module string

const (
	ModulePatients     Module = "patients"
	ModuleAppointments Module = "appointments"
	ModuleFinance      Module = "finance"
	ModuleInventory    Module = "inventory"
	ModuleReports      Module = "reports"
	ModuleSettings     Module = "settings"
	ModuleUsers        Module = "users"
)

var allModules = []Module{
	ModulePatients,
	ModuleAppointments,
	ModuleFinance,
	ModuleInventory,
	ModuleReports,
	ModuleSettings,
	ModuleUsers,
}

// moduleFlags maps each module to the users column that mirrors its grant.
var moduleFlags = map[Module]string{
	ModulePatients:     "can_access_patients",
	ModuleAppointments: "can_access_appointments",
	ModuleFinance:      "can_access_finance",
	ModuleInventory:    "can_access_inventory",
	ModuleReports:      "can_access_reports",
	ModuleSettings:     "can_access_settings",
	ModuleUsers:        "can_manage_users",
}

func AllModules() []Module {
	return append([]Module(nil), allModules...)
}

func ParseModule(s string) (Module, error) {
	m := Module(s)
	if _, ok := moduleFlags[m]; !ok {
		return "", internal.NewValidationFieldError("module", "unknown module: "+s, internal.ErrCodeInvalidModule)
	}
	return m, nil
}

// FlagColumn is the users column kept in step with grants on m.
func FlagColumn(m Module) string {
	return moduleFlags[m]
}

// Level is ordered view < create < edit < delete < admin.
type Level string

const (
	LevelView   Level = "view"
	LevelCreate Level = "create"
	LevelEdit   Level = "edit"
	LevelDelete Level = "delete"
	LevelAdmin  Level = "admin"
)

var levelRank = map[Level]int{
	LevelView:   1,
	LevelCreate: 2,
	LevelEdit:   3,
	LevelDelete: 4,
	LevelAdmin:  5,
}

func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if _, ok := levelRank[l]; !ok {
		return "", internal.NewValidationFieldError("permission_level", "unknown permission level: "+s, internal.ErrCodeInvalidPermission)
	}
	return l, nil
}

func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// Covers reports whether l is at least required. Unknown levels cover nothing.
func (l Level) Covers(required Level) bool {
	have, ok := levelRank[l]
	if !ok {
		return false
	}
	need, ok := levelRank[required]
	return ok && have >= need
}

func maxLevel(a, b Level) Level {
	if levelRank[b] > levelRank[a] {
		return b
	}
	return a
}

type Role struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Permissions map[Module]Level `json:"permissions"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Grant is a per-user, per-module permission with optional expiry.
type Grant struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Module      Module     `json:"module"`
	Level       Level      `json:"permission_level"`
	GrantedByID *int64     `json:"granted_by_id,omitempty"`
	GrantedAt   time.Time  `json:"granted_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active"`
}

func (g Grant) ActiveAt(now time.Time) bool {
	return g.IsActive && (g.ExpiresAt == nil || now.Before(*g.ExpiresAt))
}

// Access is everything that decides what one user may do.
type Access struct {
	UserID     int64
	UserActive bool
	Role       *Role
	Grants     []Grant
	Flags      map[Module]bool
}

// Effective merges grants, the role document and capability flags into the
// highest level per module. A flag alone yields view.
func (a *Access) Effective(now time.Time) map[Module]Level {
	out := make(map[Module]Level)
	if a == nil || !a.UserActive {
		return out
	}
	for _, g := range a.Grants {
		if g.ActiveAt(now) && g.Level.Valid() {
			out[g.Module] = maxLevel(out[g.Module], g.Level)
		}
	}
	if a.Role != nil && a.Role.IsActive {
		for m, l := range a.Role.Permissions {
			if l.Valid() {
				out[m] = maxLevel(out[m], l)
			}
		}
	}
	for m, on := range a.Flags {
		if on {
			out[m] = maxLevel(out[m], LevelView)
		}
	}
	return out
}

func (a *Access) Allows(m Module, required Level, now time.Time) bool {
	return a.Effective(now)[m].Covers(required)
}

func ToDataModel(r *Role) *roleDatamodel.UserRole {
	doc := datatypes.JSONMap{}
	for m, l := range r.Permissions {
		doc[string(m)] = string(l)
	}
	return &roleDatamodel.UserRole{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: doc,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// FromDataModel drops document entries that name an unknown module or level.
func FromDataModel(row *roleDatamodel.UserRole) *Role {
	perms := make(map[Module]Level, len(row.Permissions))
	for k, v := range row.Permissions {
		s, ok := v.(string)
		if !ok {
			continue
		}
		m, l := Module(k), Level(s)
		if _, known := moduleFlags[m]; known && l.Valid() {
			perms[m] = l
		}
	}
	return &Role{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Permissions: perms,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func GrantToDataModel(g *Grant) *roleDatamodel.ModulePermission {
	return &roleDatamodel.ModulePermission{
		ID:              g.ID,
		UserID:          g.UserID,
		Module:          string(g.Module),
		PermissionLevel: string(g.Level),
		GrantedByID:     g.GrantedByID,
		GrantedAt:       g.GrantedAt,
		ExpiresAt:       g.ExpiresAt,
		IsActive:        g.IsActive,
	}
}

func GrantFromDataModel(row *roleDatamodel.ModulePermission) Grant {
	return Grant{
		ID:          row.ID,
		UserID:      row.UserID,
		Module:      Module(row.Module),
		Level:       Level(row.PermissionLevel),
		GrantedByID: row.GrantedByID,
		GrantedAt:   row.GrantedAt,
		ExpiresAt:   row.ExpiresAt,
		IsActive:    row.IsActive,
	}
}
