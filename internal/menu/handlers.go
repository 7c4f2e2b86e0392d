package menu

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Handler exposes catalog endpoints.
type Handler struct {
	Service *Service
}

// Mount attaches the catalog routes onto r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/categories", h.Categories)
	r.Post("/categories", h.CreateCategory)
	r.Get("/menu-items", h.Items)
	r.Post("/menu-items", h.CreateItem)
	r.Get("/menu-items/{id}", h.ItemDetail)
	r.Put("/menu-items/{id}", h.UpdateItem)
	r.Patch("/menu-items/{id}/availability", h.Availability)
	r.Delete("/menu-items/{id}", h.DeleteItem)
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListCategories(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// CreateCategory handles POST /api/v1/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string `json:"name"`
		SortOrder int32  `json:"sortOrder"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	c, err := h.Service.CreateCategory(r.Context(), body.Name, body.SortOrder)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, c)
}

// Items handles GET /api/v1/menu-items with optional category and
// availability filters.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	var categoryID *uuid.UUID
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.WriteError(w, common.Invalid("category must be a valid id", map[string]any{"field": "category"}))
			return
		}
		categoryID = &id
	}
	availableOnly := false
	if raw := strings.TrimSpace(r.URL.Query().Get("available")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			common.WriteError(w, common.Invalid("available must be true or false", map[string]any{"field": "available"}))
			return
		}
		availableOnly = b
	}
	rows, err := h.Service.ListItems(r.Context(), categoryID, availableOnly)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// ItemDetail handles GET /api/v1/menu-items/{id}.
func (h *Handler) ItemDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	it, err := h.Service.GetItem(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, it)
}

// CreateItem handles POST /api/v1/menu-items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	it, err := h.Service.CreateItem(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, it)
}

// UpdateItem handles PUT /api/v1/menu-items/{id}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var in ItemInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	it, err := h.Service.UpdateItem(r.Context(), id, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, it)
}

// Availability handles PATCH /api/v1/menu-items/{id}/availability.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var body struct {
		Available bool `json:"isAvailable"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	it, err := h.Service.SetAvailability(r.Context(), id, body.Available)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, it)
}

// DeleteItem handles DELETE /api/v1/menu-items/{id}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.DeleteItem(r.Context(), id); err != nil {
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
