package activity

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, f Filter) ([]Entry, int64, error)
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

type ListResponse struct {
	Items  []Entry `json:"items"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// List serves GET /activity.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f := Filter{Module: r.URL.Query().Get("module")}

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.HandleServiceError(w, r, internal.NewValidationFieldError("user_id", "user_id must be an integer", internal.ErrCodeValidationFailed))
			return
		}
		f.UserID = &id
	}

	var err error
	if f.Limit, err = h.QueryInt(r, "limit", DefaultListLimit); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if f.Offset, err = h.QueryInt(r, "offset", 0); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	items, total, err := h.Service.List(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Items: items, Total: total, Limit: limit, Offset: f.Offset})
}
