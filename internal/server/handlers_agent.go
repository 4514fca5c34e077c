package server

import (
	"net/http"

	"github.com/deskbridge/deskbridge/internal/httputil"
)

func (s *Server) handleAgentStart(w http.ResponseWriter, r *http.Request) {
	if err := s.supervisor.Start(); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.supervisor.Status())
}

func (s *Server) handleAgentStop(w http.ResponseWriter, r *http.Request) {
	if err := s.supervisor.Stop(); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.supervisor.Status())
}
