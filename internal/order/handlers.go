package order

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Handler exposes the order lifecycle endpoints.
type Handler struct {
	Service *Service
}

// Fire handles POST /api/v1/orders. Mutating order routes sit behind the
// idempotency middleware wired in main; Fire also gets the rate limiter.
func (h *Handler) Fire(w http.ResponseWriter, r *http.Request) {
	var in FireInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	if in.Type == "" {
		in.Type = TypeDineIn
	}
	o, err := h.Service.Fire(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, o)
}

// List handles GET /api/v1/orders with date, status, and type filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilters(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	rows, err := h.Service.List(r.Context(), f)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// Detail handles GET /api/v1/orders/{id}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, o)
}

// AddItems handles POST /api/v1/orders/{id}/items.
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var body struct {
		Items []CartLine `json:"items"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.Service.AddItems(r.Context(), id, body.Items)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, o)
}

// RemoveItem handles DELETE /api/v1/order-items/{id}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.Service.RemoveItem(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, o)
}

// Void handles POST /api/v1/orders/{id}/void.
func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.Void(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment handles POST /api/v1/orders/{id}/payment.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var body struct {
		Method PaymentMethod `json:"method"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.RecordPayment(r.Context(), id, body.Method); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CollectPayment handles POST /api/v1/orders/{id}/collect.
func (h *Handler) CollectPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var body struct {
		Method PaymentMethod `json:"method"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.CollectLaterPayment(r.Context(), id, body.Method); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refund handles POST /api/v1/orders/{id}/refund.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var in RefundInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	amount, err := h.Service.Refund(r.Context(), id, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{"refundAmount": amount})
}

// PrintBill handles POST /api/v1/tables/{id}/bill.
func (h *Handler) PrintBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.PrintBill(r.Context(), id); err != nil {
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

func parseListFilters(r *http.Request) (ListFilters, error) {
	q := r.URL.Query()
	f := ListFilters{}
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, common.Invalid("from must be RFC3339", map[string]any{"field": "from"})
		}
		f.From = t
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, common.Invalid("to must be RFC3339", map[string]any{"field": "to"})
		}
		f.To = t
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" && raw != "ALL" {
		f.Status = Status(raw)
	}
	if raw := strings.TrimSpace(q.Get("type")); raw != "" && raw != "ALL" {
		f.Type = Type(raw)
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 1 {
			return f, common.Invalid("limit must be a positive integer", map[string]any{"field": "limit"})
		}
		f.Limit = int32(n)
	}
	return f, nil
}
