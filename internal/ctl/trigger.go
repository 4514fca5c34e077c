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

var (
	triggerSelectedText string
	triggerClipboard    string
	triggerWindowTitle  string
)

func newTriggerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger <hotkey>",
		Short: "Manually fire a declarative workflow's hotkey, for testing without the desktop agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client := newAPIClient(serverURL, authToken)
			body := map[string]any{
				"hotkey": args[0],
				"context": map[string]string{
					"selected_text": triggerSelectedText,
					"clipboard":     triggerClipboard,
					"window_title":  triggerWindowTitle,
				},
			}

			var result map[string]any
			if err := client.do(ctx, "POST", "/api/trigger", body, &result); err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Printf("status: %v\n", result["status"])
			if msg, ok := result["error_message"]; ok && msg != "" {
				fmt.Printf("error:  %v\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&triggerSelectedText, "selected-text", "", "simulated selected text")
	cmd.Flags().StringVar(&triggerClipboard, "clipboard", "", "simulated clipboard content")
	cmd.Flags().StringVar(&triggerWindowTitle, "window-title", "", "simulated active window title")

	return cmd
}
