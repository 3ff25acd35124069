package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/auth"
	"github.com/frahmantamala/practice-management/internal/core/common/validation"
	"github.com/frahmantamala/practice-management/internal/security"
	"github.com/frahmantamala/practice-management/internal/transport"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.NewUnauthorizedError("Authentication required", internal.ErrCodeInvalidToken))
		return
	}

	u, err := h.Service.GetByID(r.Context(), principal.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	u.Permissions = principal.Permissions

	h.WriteJSON(w, http.StatusOK, u)
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	data, err := h.DecodeMap(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	data = security.SanitizeMap(data, func(key string) bool { return key == "password" })
	if errs := validation.Validate(data, CreateUserRules()); errs.HasErrors() {
		h.HandleServiceError(w, r, errs.AppError())
		return
	}

	u, err := h.Service.Create(r.Context(), CreateUserRequestFromMap(data))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, u)
}
