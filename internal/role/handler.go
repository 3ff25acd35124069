package role

import (
	"context"
	"net/http"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListRoles(ctx context.Context) ([]Role, error)
	AssignRole(ctx context.Context, userID int64, roleName string) (*Role, error)
	GrantPermission(ctx context.Context, in GrantInput) (*Grant, error)
	RevokePermission(ctx context.Context, userID int64, module string) error
	ListPermissions(ctx context.Context, userID int64) ([]Grant, error)
	EffectivePermissions(ctx context.Context, userID int64) (map[Module]Level, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var req AssignRoleRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if req.Role == "" {
		h.HandleServiceError(w, r, internal.NewValidationFieldError("role", "role is required", internal.ErrCodeValidationFailed))
		return
	}

	assigned, err := h.Service.AssignRole(r.Context(), userID, req.Role)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, assigned)
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	grants, err := h.Service.ListPermissions(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	effective, err := h.Service.EffectivePermissions(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionsResponse{UserID: userID, Grants: grants, Effective: effective})
}

func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var req GrantRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	grant, err := h.Service.GrantPermission(r.Context(), GrantInput{
		UserID:    userID,
		Module:    req.Module,
		Level:     req.PermissionLevel,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, grant)
}

func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.RevokePermission(r.Context(), userID, chi.URLParam(r, "module")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
