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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type agentStatusResult struct {
	Running       bool    `json:"running"`
	PID           int     `json:"pid,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds,omitempty"`
}

func newAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Control the agent dispatcher subprocess supervised by the server",
	}
	cmd.AddCommand(newAgentSubcommand("start", "Start the agent dispatcher subprocess", "POST", "/api/agent/start"))
	cmd.AddCommand(newAgentSubcommand("stop", "Stop the agent dispatcher subprocess", "POST", "/api/agent/stop"))
	cmd.AddCommand(newAgentSubcommand("status", "Report the agent dispatcher subprocess's status", "GET", "/api/agent/status"))
	return cmd
}

func newAgentSubcommand(use, short, method, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			client := newAPIClient(serverURL, authToken)
			var result agentStatusResult
			if err := client.do(ctx, method, path, nil, &result); err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			if result.Running {
				fmt.Printf("running: true  pid=%d  uptime=%.0fs\n", result.PID, result.UptimeSeconds)
			} else {
				fmt.Println("running: false")
			}
			return nil
		},
	}
}
