package server

import (
	"net/http"
	"time"

	"github.com/deskbridge/deskbridge/internal/httputil"
)

type healthResponse struct {
	Status            string                 `json:"status"`
	WorkflowsLoaded    int                    `json:"workflows_loaded"`
	ConnectorsActive   int                    `json:"connectors_active"`
	UptimeSeconds      float64                `json:"uptime_seconds"`
	Checks             map[string]any         `json:"checks"`
}

// handleHealth is unauthenticated by design (REDESIGN/open-question §9):
// the dashboard and orchestration scripts use it as a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	visualCount := s.visual.Count()
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:           "ok",
		WorkflowsLoaded:  len(s.declarative) + visualCount,
		ConnectorsActive: s.connectors.Count(),
		UptimeSeconds:    time.Since(s.startedAt).Seconds(),
		Checks: map[string]any{
			"audit_log": s.audit.Status(),
		},
	})
}
