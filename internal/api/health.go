package api

import (
	"net/http"
	"strings"
	"time"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

// HealthInfo describes the wired collaborators for the health endpoint.
type HealthInfo struct {
	Provider   string
	Model      string
	Strategies []string
	HasCookie  func() bool
}

type HealthHandler struct {
	info      HealthInfo
	version   string
	startTime time.Time
}

func NewHealthHandler(info HealthInfo, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		info:      info,
		version:   version,
		startTime: startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"transcription": "not_configured",
		"acquisition":   "not_configured",
		"cookie":        "not_configured",
	}
	if h.info.Provider != "" {
		checks["transcription"] = h.info.Provider + "/" + h.info.Model
	}
	if len(h.info.Strategies) > 0 {
		checks["acquisition"] = strings.Join(h.info.Strategies, ",")
	}
	if h.info.HasCookie != nil && h.info.HasCookie() {
		checks["cookie"] = "configured"
	}

	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}
