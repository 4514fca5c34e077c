// Package server implements the orchestration server (C3): the sole
// network boundary, owning the workflow registries, the connector pool, the
// audit log, the agent supervisor, and the picker sessions. No process-wide
// globals: every handler closes over one *Server value.
package server

import (
	"log/slog"
	"time"

	"github.com/deskbridge/deskbridge/internal/agentclient"
	"github.com/deskbridge/deskbridge/internal/config"
	"github.com/deskbridge/deskbridge/internal/connector"
	"github.com/deskbridge/deskbridge/internal/desktop"
	"github.com/deskbridge/deskbridge/internal/workflow"
)

// Server holds all server-side state for one orchestration process.
type Server struct {
	token     string
	startedAt time.Time
	logger    *slog.Logger
	auth      bearerAuthenticator

	connectors *connector.Registry

	declarative      []config.DeclarativeWorkflow
	declarativeByKey map[string]config.DeclarativeWorkflow

	visual *VisualStore

	interpreter *workflow.Interpreter
	agentClient *agentclient.Client

	picker *PickerCoordinator
	audit  *AuditLog

	supervisor *AgentSupervisor
}

// Config bundles the dependencies New wires together.
type Config struct {
	Token             string
	Logger            *slog.Logger
	Connectors        *connector.Registry
	DeclarativeCatalog config.WorkflowCatalog
	VisualStorePath   string
	Desktop           desktop.IO
	AgentClient       *agentclient.Client
	AgentCommand      []string
	AgentEnv          []string
	AuditLogPath      string
}

// New constructs a Server from its configuration, loading the visual
// workflow store (creating an empty one if absent).
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	visual, err := NewVisualStore(cfg.VisualStorePath)
	if err != nil {
		return nil, err
	}

	audit, err := NewAuditLog(cfg.AuditLogPath)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]config.DeclarativeWorkflow, len(cfg.DeclarativeCatalog.Workflows))
	for _, wf := range cfg.DeclarativeCatalog.Workflows {
		byKey[config.NormalizeHotkey(wf.Hotkey)] = wf
	}

	s := &Server{
		token:            cfg.Token,
		startedAt:        time.Now(),
		logger:           cfg.Logger,
		connectors:       cfg.Connectors,
		declarative:      cfg.DeclarativeCatalog.Workflows,
		declarativeByKey: byKey,
		visual:           visual,
		interpreter:      workflow.NewInterpreter(cfg.Desktop, cfg.Connectors, cfg.AgentClient, cfg.Logger),
		agentClient:      cfg.AgentClient,
		picker:           NewPickerCoordinator(),
		audit:            audit,
		supervisor:       NewAgentSupervisor(cfg.AgentCommand, cfg.AgentEnv, cfg.Logger),
	}

	return s, nil
}
