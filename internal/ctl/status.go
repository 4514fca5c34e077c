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

type healthResult struct {
	Status           string  `json:"status"`
	WorkflowsLoaded  int     `json:"workflows_loaded"`
	ConnectorsActive int     `json:"connectors_active"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the orchestration server's health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			client := newAPIClient(serverURL, authToken)
			var result healthResult
			if err := client.do(ctx, "GET", "/api/health", nil, &result); err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Printf("server:             %s\n", serverURL)
			fmt.Printf("status:             %s\n", result.Status)
			fmt.Printf("workflows loaded:   %d\n", result.WorkflowsLoaded)
			fmt.Printf("connectors active:  %d\n", result.ConnectorsActive)
			fmt.Printf("uptime:             %.0fs\n", result.UptimeSeconds)
			return nil
		},
	}
}
