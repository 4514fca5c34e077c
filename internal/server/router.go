package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deskbridge/deskbridge/internal/httputil"
)

// Router builds the orchestration server's HTTP handler. All endpoints
// except root, health and /metrics require bearer auth; every request is logged with
// its method, path, and duration.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/trigger", s.requireAuth(s.handleTrigger))
	mux.HandleFunc("GET /api/workflows", s.requireAuth(s.handleListWorkflows))

	mux.HandleFunc("GET /api/visual-workflows", s.requireAuth(s.handleListVisualWorkflows))
	mux.HandleFunc("POST /api/visual-workflows", s.requireAuth(s.handleCreateVisualWorkflow))
	mux.HandleFunc("GET /api/visual-workflows/{id}", s.requireAuth(s.handleGetVisualWorkflow))
	mux.HandleFunc("PUT /api/visual-workflows/{id}", s.requireAuth(s.handleUpdateVisualWorkflow))
	mux.HandleFunc("DELETE /api/visual-workflows/{id}", s.requireAuth(s.handleDeleteVisualWorkflow))
	mux.HandleFunc("POST /api/visual-workflows/{id}/execute", s.requireAuth(s.handleExecuteVisualWorkflow))

	mux.HandleFunc("POST /api/picker/activate", s.requireAuth(s.handlePickerActivate))
	mux.HandleFunc("POST /api/picker/coordinates", s.requireAuth(s.handlePickerCoordinates))
	mux.HandleFunc("GET /api/picker/status/{session_id}", s.requireAuth(s.handlePickerStatus))

	mux.HandleFunc("POST /api/agent/start", s.requireAuth(s.handleAgentStart))
	mux.HandleFunc("POST /api/agent/stop", s.requireAuth(s.handleAgentStop))
	mux.HandleFunc("GET /api/agent/status", s.requireAuth(s.handleAgentStatus))

	mux.HandleFunc("GET /api/audit/recent", s.requireAuth(s.handleAuditRecent))

	return s.withLogging(mux)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			s.logger.Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"name": "deskbridge-server"})
}
