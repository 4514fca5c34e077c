package server

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/deskbridge/deskbridge/internal/httputil"
	"github.com/deskbridge/deskbridge/internal/tracing"
	"github.com/deskbridge/deskbridge/internal/workflow"
)

var visualTracer = tracing.Tracer("deskbridge/server")

func (s *Server) handleListVisualWorkflows(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"workflows": s.visual.List()})
}

func (s *Server) handleCreateVisualWorkflow(w http.ResponseWriter, r *http.Request) {
	var wf workflow.VisualWorkflow
	if err := httputil.DecodeJSON(r, &wf); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if wf.ID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "workflow id is required")
		return
	}
	if err := s.visual.Create(&wf); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, wf)
}

func (s *Server) handleGetVisualWorkflow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	wf, ok := s.visual.Get(id)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "workflow not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wf)
}

func (s *Server) handleUpdateVisualWorkflow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var wf workflow.VisualWorkflow
	if err := httputil.DecodeJSON(r, &wf); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.visual.Update(id, &wf); err != nil {
		httputil.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wf)
}

func (s *Server) handleDeleteVisualWorkflow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.visual.Delete(id); err != nil {
		httputil.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type executeVisualRequest struct {
	Variables map[string]any `json:"variables"`
}

func (s *Server) handleExecuteVisualWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx, span := visualTracer.Start(r.Context(), "visual_workflow_execute")
	defer span.End()

	id := r.PathValue("id")
	span.SetAttributes(attribute.String("workflow_id", id))
	wf, ok := s.visual.Get(id)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "workflow not found")
		return
	}

	var req executeVisualRequest
	if err := httputil.DecodeJSON(r, &req); err != nil && err.Error() != "EOF" {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.interpreter.Execute(ctx, wf, req.Variables)
	span.SetAttributes(attribute.String("status", result.Status))
	if result.Status != "success" {
		span.SetStatus(codes.Error, result.ErrorMessage)
		span.SetAttributes(attribute.String("failed_step_id", result.FailedStepID))
	}

	s.audit.Record(AuditEntry{
		WorkflowID: wf.ID,
		Status:     AuditStatus(result.Status),
		ErrorCode:  result.ErrorCode,
	})

	httputil.WriteJSON(w, http.StatusOK, result)
}
