package patient

import (
	"context"
	"net/http"

	"github.com/frahmantamala/practice-management/internal/core/common/validation"
	"github.com/frahmantamala/practice-management/internal/security"
	"github.com/frahmantamala/practice-management/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, req PatientRequest) (*Patient, error)
	Get(ctx context.Context, id int64) (*Patient, error)
	List(ctx context.Context, f Filter) ([]Patient, int64, error)
	Update(ctx context.Context, id int64, req PatientRequest) (*Patient, error)
	Delete(ctx context.Context, id int64) error
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

// decodePatient runs the body through sanitize then the rule engine.
func (h *Handler) decodePatient(r *http.Request) (PatientRequest, error) {
	data, err := h.DecodeMap(r)
	if err != nil {
		return PatientRequest{}, err
	}
	data = security.SanitizeMap(data, nil)
	if errs := validation.Validate(data, Rules()); errs.HasErrors() {
		return PatientRequest{}, errs.AppError()
	}
	return RequestFromMap(data), nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodePatient(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p.ToResponse())
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := h.QueryInt(r, "limit", DefaultListLimit)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	offset, err := h.QueryInt(r, "offset", 0)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	f := Filter{
		Search:          security.SanitizeString(r.URL.Query().Get("search")),
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
		Limit:           limit,
		Offset:          offset,
	}
	patients, total, err := h.Service.List(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	items := make([]PatientResponse, 0, len(patients))
	for i := range patients {
		items = append(items, patients[i].ToResponse())
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	req, err := h.decodePatient(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
