// Package health serves the liveness and readiness probes and the gate
// main flips during graceful shutdown.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe names one dependency and how to ping it.
type Probe struct {
	Name    string
	Timeout time.Duration
	Ping    func(ctx context.Context) error
}

// Handler serves /health/live and /health/ready.
type Handler struct {
	Probes []Probe
}

func (Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready answers 503 while the shutdown gate is closed or any probe fails,
// with a per-dependency status body either way.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !Ready() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	status := http.StatusOK
	checks := make(map[string]string, len(h.Probes))
	for _, p := range h.Probes {
		if err := h.run(r.Context(), p); err != nil {
			checks[p.Name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[p.Name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(checks)
}

func (Handler) run(ctx context.Context, p Probe) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Ping(ctx)
}
