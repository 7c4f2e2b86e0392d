package table

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Handler exposes the floor plan endpoints.
type Handler struct {
	Repo *Repo
}

// Mount attaches table routes onto r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/tables", h.List)
	r.Post("/tables", h.Create)
	r.Patch("/tables/{id}/status", h.SetStatus)
	r.Delete("/tables/{id}", h.Delete)
}

// List handles GET /api/v1/tables.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Repo.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// Create handles POST /api/v1/tables.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Seats int32  `json:"seats"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		common.WriteError(w, common.Invalid("name is required", map[string]any{"field": "name"}))
		return
	}
	if body.Seats <= 0 {
		common.WriteError(w, common.Invalid("seats must be positive", map[string]any{"field": "seats"}))
		return
	}
	t, err := h.Repo.Create(r.Context(), body.Name, body.Seats)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, t)
}

// SetStatus handles PATCH /api/v1/tables/{id}/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Invalid("id must be a valid uuid", map[string]any{"field": "id"}))
		return
	}
	var body struct {
		Status Status `json:"status"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	if !body.Status.Valid() {
		common.WriteError(w, common.Invalid("status must be VACANT, OCCUPIED, or BILL_PRINTED", map[string]any{"field": "status"}))
		return
	}
	t, err := h.Repo.SetStatus(r.Context(), id, body.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.WriteError(w, common.NotFound("table not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, t)
}

// Delete handles DELETE /api/v1/tables/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Invalid("id must be a valid uuid", map[string]any{"field": "id"}))
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.WriteError(w, common.NotFound("table not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
