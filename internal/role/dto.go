package role

import "time"

type AssignRoleRequest struct {
	Role string `json:"role"`
}

type GrantRequest struct {
	Module          string     `json:"module"`
	PermissionLevel string     `json:"permission_level"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

type RolesResponse struct {
	Roles []Role `json:"roles"`
}

type PermissionsResponse struct {
	UserID    int64            `json:"user_id"`
	Grants    []Grant          `json:"grants"`
	Effective map[Module]Level `json:"effective"`
}
