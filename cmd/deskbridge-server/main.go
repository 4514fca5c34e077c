// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/deskbridge/deskbridge/internal/agentclient"
	"github.com/deskbridge/deskbridge/internal/config"
	"github.com/deskbridge/deskbridge/internal/connector"
	"github.com/deskbridge/deskbridge/internal/desktop"
	"github.com/deskbridge/deskbridge/internal/log"
	"github.com/deskbridge/deskbridge/internal/server"
	"github.com/deskbridge/deskbridge/internal/tracing"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		configDir     = flag.String("config-dir", "config", "directory holding workflows.yaml, connectors.yaml, icd10_mini.yaml")
		visualStore   = flag.String("visual-store", "config/visual_workflows.json", "path to the visual workflow JSON store")
		addr          = flag.String("addr", ":8080", "HTTP listen address")
		agentCallback = flag.String("agent-callback", "http://127.0.0.1:8765", "base URL of the agent's local callback server")
		agentCommand  = flag.String("agent-command", "", "comma-separated command+args to spawn the agent dispatcher")
		showVersion   = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("deskbridge-server %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	logger := log.New(log.FromEnv())
	slog.SetDefault(logger)

	token := os.Getenv("MIDDLEWARE_TOKEN")
	if token == "" {
		logger.Error("MIDDLEWARE_TOKEN is not set")
		os.Exit(1)
	}

	cfg, err := config.LoadAll(*configDir)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	tracerProvider, err := tracing.NewProvider("deskbridge-server", os.Stdout)
	if err != nil {
		logger.Error("failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("error shutting down tracer provider", slog.Any("error", err))
		}
	}()

	metrics := connector.NewMetricsCollector(nil)
	registry, err := connector.NewRegistry(cfg.Connectors, metrics)
	if err != nil {
		logger.Error("failed to build connector registry", slog.Any("error", err))
		os.Exit(1)
	}

	var agentCmd []string
	if *agentCommand != "" {
		agentCmd = strings.Split(*agentCommand, ",")
	}

	srv, err := server.New(server.Config{
		Token:              token,
		Logger:             logger,
		Connectors:         registry,
		DeclarativeCatalog: cfg.Workflows,
		VisualStorePath:    *visualStore,
		Desktop:            desktop.NewRobotGo(),
		AgentClient:        agentclient.New(*agentCallback, 10*time.Second),
		AgentCommand:       agentCmd,
		AgentEnv:           os.Environ(),
		AuditLogPath:       os.Getenv("AUDIT_LOG_PATH"),
	})
	if err != nil {
		logger.Error("failed to construct server", slog.Any("error", err))
		os.Exit(1)
	}

	httpServer := &http.Server{Addr: *addr, Handler: srv.Router()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", *addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
