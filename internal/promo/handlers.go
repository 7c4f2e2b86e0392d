package promo

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Handler exposes the promotion admin surface plus the active listing the
// register polls.
type Handler struct {
	Service *Service
}

// Mount attaches promotion routes onto r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/promotions", h.List)
	r.Get("/promotions/active", h.Active)
	r.Post("/promotions", h.Create)
	r.Get("/promotions/{id}", h.Detail)
	r.Put("/promotions/{id}", h.Update)
	r.Patch("/promotions/{id}/active", h.SetActive)
	r.Delete("/promotions/{id}", h.Delete)
}

// List handles GET /api/v1/promotions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// Active handles GET /api/v1/promotions/active.
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.Active(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// Detail handles GET /api/v1/promotions/{id}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, p)
}

// Create handles POST /api/v1/promotions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p Promotion
	if err := common.DecodeJSON(r, &p); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Service.Create(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, created)
}

// Update handles PUT /api/v1/promotions/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var p Promotion
	if err := common.DecodeJSON(r, &p); err != nil {
		common.WriteError(w, err)
		return
	}
	p.ID = id
	updated, err := h.Service.Update(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, updated)
}

// SetActive handles PATCH /api/v1/promotions/{id}/active.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.SetActive(r.Context(), id, body.Active); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/promotions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, common.Invalid("id must be a valid uuid", map[string]any{"field": "id"})
	}
	return id, nil
}
