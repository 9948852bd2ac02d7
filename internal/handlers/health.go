package handlers

import (
	"net/http"
	"runtime"
	"time"

	"homeserver/internal/logging"
	"homeserver/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	// Catalog summary
	TotalItems  int `json:"totalItems"`
	TotalImages int `json:"totalImages"`
	TotalVideos int `json:"totalVideos"`
}

// HealthCheck returns the health status of the service.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	code := http.StatusOK
	if stats, err := h.db.Stats(r.Context()); err != nil {
		logging.Warn("Health check could not read catalog stats: %v", err)
		response.Status = statusDegraded
		code = http.StatusServiceUnavailable
	} else {
		response.TotalItems = stats.TotalItems
		response.TotalImages = stats.TotalImages
		response.TotalVideos = stats.TotalVideos
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeJSON(w, response)
}

// LivenessCheck reports that the process is up.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, "alive")
}

// ReadinessCheck reports whether the database is reachable.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		logging.Warn("Readiness check failed: %v", err)
		writeJSONError(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ready")
}
