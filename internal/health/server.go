package health

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register mounts /health, /health/detailed and /metrics on mux.
func Register(mux *http.ServeMux, monitor *Monitor) {
	h := &handler{monitor: monitor}
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /health/detailed", h.handleDetailed)
	mux.Handle("GET /metrics", promhttp.Handler())
}

type handler struct {
	monitor *Monitor
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.monitor.CheckHealth(r.Context())

	response := map[string]string{"status": string(report.SystemStatus)}
	w.Header().Set("Content-Type", "application/json")

	if report.SystemStatus == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(response)
}

func (h *handler) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := h.monitor.CheckHealth(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}
