package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/docsync/internal/server/response"
)

// HandleHealth handles GET /health and GET {prefix}/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":     "healthy",
		"service":    "docsync-api",
		"version":    h.app.Version(),
		"started_at": h.startTime,
		"uptime":     time.Since(h.startTime.Time).Round(time.Second).String(),
		"cache":      h.cache.GetStats(),
	}, "")
}
