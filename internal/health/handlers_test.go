package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-resto/internal/health"
)

func probe(name string, err error) health.Probe {
	return health.Probe{
		Name: name,
		Ping: func(context.Context) error { return err },
	}
}

func TestLive(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Handler{}.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestReadyAllProbesHealthy(t *testing.T) {
	h := health.Handler{Probes: []health.Probe{probe("db", nil), probe("redis", nil)}}

	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var checks map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &checks))
	require.Equal(t, map[string]string{"db": "ok", "redis": "ok"}, checks)
}

func TestReadyFailingProbeAnswers503(t *testing.T) {
	h := health.Handler{Probes: []health.Probe{probe("db", errors.New("db down")), probe("redis", nil)}}

	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var checks map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &checks))
	require.Equal(t, "db down", checks["db"])
	require.Equal(t, "ok", checks["redis"])
}

func TestReadyClosedGateShortCircuits(t *testing.T) {
	pinged := false
	h := health.Handler{Probes: []health.Probe{{
		Name: "db",
		Ping: func(context.Context) error { pinged = true; return nil },
	}}}

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)

	health.SetReady(false)
	defer health.SetReady(true)

	rr := httptest.NewRecorder()
	h.Ready(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.False(t, pinged)
}
