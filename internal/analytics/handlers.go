package analytics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Handler serves the sales report.
type Handler struct {
	Svc *Service
	Now func() time.Time
}

func (h *Handler) Mount(r chi.Router) {
	r.Get("/analytics/sales", h.sales)
}

// sales accepts RFC 3339 from/to bounds and defaults to today so the
// dashboard can poll without parameters.
func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			common.WriteError(w, common.Invalid("invalid from timestamp", nil))
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			common.WriteError(w, common.Invalid("invalid to timestamp", nil))
			return
		}
		to = parsed
	}
	if to.Before(from) {
		common.WriteError(w, common.Invalid("window end precedes start", nil))
		return
	}

	rep, err := h.Svc.Sales(r.Context(), from, to)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rep)
}
