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
	"os"
	"os/signal"
	"syscall"

	"github.com/deskbridge/deskbridge/internal/agent"
	"github.com/deskbridge/deskbridge/internal/config"
	"github.com/deskbridge/deskbridge/internal/desktop"
	"github.com/deskbridge/deskbridge/internal/log"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		serverURL    = flag.String("server", "http://127.0.0.1:8080", "orchestration server base URL")
		callbackAddr = flag.String("callback-addr", "127.0.0.1:8765", "local callback server listen address")
		configDir    = flag.String("config-dir", "config", "directory holding workflows.yaml")
		pickerCombo  = flag.String("picker-hotkey", "CTRL+ALT+P", "coordinate-picker hotkey combo")
		userID       = flag.String("user-id", "", "opaque user identifier included in captured context")
		showVersion  = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("deskbridge-agent %s (commit: %s, built: %s)\n", version, commit, buildDate)
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

	io := desktop.NewRobotGo()
	serverClient := agent.NewServerClient(*serverURL, token)
	dispatcher := agent.NewDispatcher(io, serverClient, *callbackAddr, *userID, logger)
	dispatcher.Declarative = agent.NewGoDesignHook()
	dispatcher.Visual = agent.NewGoDesignHook()
	dispatcher.Picker = agent.NewGoDesignHook()

	declarativeHotkeys := make(map[string]func())
	for _, wf := range cfg.Workflows.Workflows {
		combo := wf.Hotkey
		declarativeHotkeys[combo] = func() {
			dispatcher.HandleDeclarative(context.Background(), combo)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	visualHotkeys := make(map[string]func())
	if err := serverClient.WaitHealthy(ctx); err != nil {
		logger.Error("server never became healthy", slog.Any("error", err))
		os.Exit(1)
	}
	visualWorkflows, err := serverClient.ListVisualWorkflows(ctx)
	if err != nil {
		logger.Warn("could not fetch visual workflows from server, continuing without them", slog.Any("error", err))
	} else {
		for _, wf := range visualWorkflows {
			if !wf.Enabled || wf.Hotkey == "" {
				continue
			}
			id := wf.ID
			visualHotkeys[wf.Hotkey] = func() {
				dispatcher.HandleVisual(context.Background(), id)
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received signal, shutting down")
		cancel()
	}()

	if err := dispatcher.Run(ctx, declarativeHotkeys, visualHotkeys, *pickerCombo); err != nil {
		logger.Error("dispatcher exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}
