package server

import (
	"net/http"
	"strconv"

	"github.com/deskbridge/deskbridge/internal/httputil"
)

func (s *Server) handleAuditRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": s.audit.Recent(limit)})
}
