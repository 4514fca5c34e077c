package server

import (
	"net/http"

	"github.com/deskbridge/deskbridge/internal/httputil"
)

type pickerActivateRequest struct {
	SessionID string `json:"session_id"`
	FieldName string `json:"field_name"`
}

func (s *Server) handlePickerActivate(w http.ResponseWriter, r *http.Request) {
	var req pickerActivateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FieldName == "" {
		httputil.WriteError(w, http.StatusBadRequest, "field_name is required")
		return
	}
	session := s.picker.Activate(req.SessionID, req.FieldName)
	httputil.WriteJSON(w, http.StatusOK, session)
}

type pickerCoordinatesRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handlePickerCoordinates(w http.ResponseWriter, r *http.Request) {
	var req pickerCoordinatesRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.picker.ReportCoordinates(req.X, req.Y) {
		httputil.WriteError(w, http.StatusNotFound, "no active picker session")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePickerStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	session, ok := s.picker.Status(sessionID)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "unknown picker session")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}
