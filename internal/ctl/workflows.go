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

	"github.com/deskbridge/deskbridge/internal/config"
)

type workflowListResult struct {
	Workflows []config.DeclarativeWorkflow `json:"workflows"`
}

func newWorkflowsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Inspect declarative workflows loaded by the server",
	}
	cmd.AddCommand(newWorkflowsListCommand())
	return cmd
}

func newWorkflowsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the declarative workflows the server currently has loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			client := newAPIClient(serverURL, authToken)
			var result workflowListResult
			if err := client.do(ctx, "GET", "/api/workflows", nil, &result); err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			for _, wf := range result.Workflows {
				fmt.Printf("%-20s hotkey=%-16s connector=%s\n", wf.ID, wf.Hotkey, wf.Connector)
			}
			return nil
		},
	}
}
