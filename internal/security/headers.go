// Package security holds the HTTP hardening middleware applied in front of
// the API router: baseline response headers and a request body cap.
package security

import (
	"net/http"
	"strconv"
)

// Headers stamps baseline security headers on every response. HSTS is only
// emitted on TLS connections so plain-HTTP deployments behind a terminating
// proxy do not pin browsers to a scheme the service cannot serve.
type Headers struct {
	Enable         bool
	HSTS           bool
	HSTSMaxAge     int
	HSTSSubdomains bool
}

func (h Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Enable {
			next.ServeHTTP(w, r)
			return
		}

		hd := w.Header()
		hd.Set("X-Content-Type-Options", "nosniff")
		hd.Set("X-Frame-Options", "DENY")
		hd.Set("Referrer-Policy", "no-referrer")
		hd.Set("Permissions-Policy", "geolocation=(), microphone=()")

		if h.HSTS && r.TLS != nil {
			hd.Set("Strict-Transport-Security", h.hstsValue())
		}

		next.ServeHTTP(w, r)
	})
}

func (h Headers) hstsValue() string {
	maxAge := h.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 31536000
	}
	v := "max-age=" + strconv.Itoa(maxAge)
	if h.HSTSSubdomains {
		v += "; includeSubDomains"
	}
	return v
}
