package kds

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Handler serves the kitchen display endpoints.
type Handler struct {
	Repo *Repo
}

func (h *Handler) Mount(r chi.Router) {
	r.Route("/kds", func(r chi.Router) {
		r.Get("/active", h.active)
		r.Get("/counts", h.counts)
		r.Post("/items/{id}/bump", transition(h.Repo.BumpItem))
		r.Post("/items/{id}/serve", transition(h.Repo.ServeItem))
		r.Post("/orders/{id}/bump", transition(h.Repo.BumpOrder))
		r.Post("/orders/{id}/serve-all", transition(h.Repo.ServeAll))
	})
}

func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Repo.ActiveOrders(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, orders)
}

func (h *Handler) counts(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repo.SidebarCounts(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, c)
}

// transition adapts the bump and serve updates, which all take a single
// id from the path and return only an error.
func transition(fn func(ctx context.Context, id uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			common.WriteError(w, common.Invalid("invalid id", nil))
			return
		}
		if err := fn(r.Context(), id); err != nil {
			common.WriteError(w, err)
			return
		}
		common.Data(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
