package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Time   string            `json:"time"`
}

// newMux serves /health (dependency checks), /ready (set once workers are
// registered and cleared on shutdown) and /metrics.
func newMux(checks map[string]HealthCheck, ready *atomic.Bool, timeout time.Duration) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp := healthResponse{Status: "healthy", Checks: map[string]string{}}
		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Status = "unhealthy"
				resp.Checks[name] = err.Error()
				continue
			}
			resp.Checks[name] = "ok"
		}

		code := http.StatusOK
		if resp.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ready"})
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, code int, resp healthResponse) {
	resp.Time = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
