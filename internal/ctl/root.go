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

package ctl

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool

	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// SetVersion records build-time version metadata, called from main.
func SetVersion(v, c, b string) {
	version, commit, buildDate = v, c, b
}

// NewRootCommand builds deskbridgectl's root Cobra command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deskbridgectl",
		Short: "Administrative CLI for the deskbridge orchestration server",
		Long: `deskbridgectl talks to a running deskbridge-server over its REST API:
inspecting configured workflows, firing a trigger for manual testing,
controlling the agent dispatcher subprocess, and reading the audit log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&serverURL, "server", envOrDefault("DESKBRIDGE_SERVER", "http://127.0.0.1:8080"), "orchestration server base URL")
	cmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("MIDDLEWARE_TOKEN"), "bearer token (default: $MIDDLEWARE_TOKEN)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output machine-readable JSON")

	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newWorkflowsCommand())
	cmd.AddCommand(newTriggerCommand())
	cmd.AddCommand(newAgentCommand())
	cmd.AddCommand(newAuditCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// HandleExitError prints err and exits 1, mirroring the orchestration
// server's own fatal-error convention.
func HandleExitError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printResult(v any) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Println(v)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("deskbridgectl %s (commit: %s, built: %s)\n", version, commit, buildDate)
			return nil
		},
	}
}
