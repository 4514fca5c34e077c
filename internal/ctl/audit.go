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

type auditEntryResult struct {
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
	Connector  string    `json:"connector,omitempty"`
	Status     string    `json:"status"`
	ErrorCode  string    `json:"error_code,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

var auditLimit int

func newAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the server's workflow execution audit log",
	}
	cmd.AddCommand(newAuditRecentCommand())
	return cmd
}

func newAuditRecentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			client := newAPIClient(serverURL, authToken)
			var result struct {
				Entries []auditEntryResult `json:"entries"`
			}
			path := fmt.Sprintf("/api/audit/recent?limit=%d", auditLimit)
			if err := client.do(ctx, "GET", path, nil, &result); err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			for _, e := range result.Entries {
				fmt.Printf("%-25s %-20s %-10s %s\n",
					e.Timestamp.Format(time.RFC3339), e.WorkflowID, e.Status, e.ErrorCode)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&auditLimit, "limit", 50, "maximum number of entries to show")

	return cmd
}
