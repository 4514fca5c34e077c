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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/deskbridge/deskbridge/pkg/errors"
	"gopkg.in/yaml.v3"
)

// All is the full set of catalogs loaded at startup.
type All struct {
	Workflows  WorkflowCatalog
	Connectors ConnectorCatalog
	ICD10      ICD10Catalog // nil if icd10_mini.yaml is absent
}

// LoadAll reads workflows.yaml, connectors.yaml, and the optional
// icd10_mini.yaml from dir, hard-failing on workflow/connector schema
// violations and soft-failing (skipped without logging) on bad ICD-10 entries, mirroring
// the reference config loader's strictness split.
func LoadAll(dir string) (*All, error) {
	all := &All{}

	wf, err := loadWorkflows(filepath.Join(dir, "workflows.yaml"))
	if err != nil {
		return nil, err
	}
	all.Workflows = wf

	conn, err := loadConnectors(filepath.Join(dir, "connectors.yaml"))
	if err != nil {
		return nil, err
	}
	all.Connectors = conn

	icd10Path := filepath.Join(dir, "icd10_mini.yaml")
	if _, statErr := os.Stat(icd10Path); statErr == nil {
		all.ICD10 = loadICD10Lenient(icd10Path)
	}

	if err := Validate(all); err != nil {
		return nil, err
	}

	return all, nil
}

func loadWorkflows(path string) (WorkflowCatalog, error) {
	var cat WorkflowCatalog
	data, err := os.ReadFile(path)
	if err != nil {
		return cat, &apperrors.ConfigError{Key: path, Reason: "workflow catalog not readable", Cause: err}
	}
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return cat, &apperrors.ConfigError{Key: path, Reason: "workflow catalog is not valid YAML", Cause: err}
	}
	return cat, nil
}

func loadConnectors(path string) (ConnectorCatalog, error) {
	var cat ConnectorCatalog
	data, err := os.ReadFile(path)
	if err != nil {
		return cat, &apperrors.ConfigError{Key: path, Reason: "connector catalog not readable", Cause: err}
	}
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return cat, &apperrors.ConfigError{Key: path, Reason: "connector catalog is not valid YAML", Cause: err}
	}
	return cat, nil
}

// loadICD10Lenient loads the ICD-10 catalog, skipping malformed entries
// rather than failing startup, matching the reference loader's soft-fail
// behavior for this optional, non-authoritative table.
func loadICD10Lenient(path string) ICD10Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		return ICD10Catalog{}
	}

	var raw map[string]ICD10Entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ICD10Catalog{}
	}

	out := make(ICD10Catalog, len(raw))
	for code, entry := range raw {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		out[code] = entry
	}
	return out
}

// Validate aggregates every workflow/connector schema violation into a
// single fatal error, matching the reference loader's hard-fail behavior.
func Validate(all *All) error {
	var problems []string

	seenHotkeys := map[string]bool{}
	for _, wf := range all.Workflows.Workflows {
		if wf.ID == "" {
			problems = append(problems, "workflow missing id")
			continue
		}
		key := normalizeHotkey(wf.Hotkey)
		if key == "" {
			problems = append(problems, fmt.Sprintf("workflow %q missing hotkey", wf.ID))
			continue
		}
		if seenHotkeys[key] {
			problems = append(problems, fmt.Sprintf("workflow %q duplicates hotkey %q", wf.ID, wf.Hotkey))
		}
		seenHotkeys[key] = true

		if wf.Connector == "" {
			problems = append(problems, fmt.Sprintf("workflow %q missing connector", wf.ID))
		}
		if len(wf.Whitelist) > 0 {
			allowed := make(map[string]bool, len(wf.Whitelist))
			for _, f := range wf.Whitelist {
				allowed[strings.ToLower(f)] = true
			}
			for _, out := range wf.Outputs {
				if !allowed[strings.ToLower(out.TargetField)] {
					problems = append(problems, fmt.Sprintf(
						"workflow %q targets field %q not in its whitelist", wf.ID, out.TargetField))
				}
			}
		}
	}

	seenConnectors := map[string]bool{}
	for _, c := range all.Connectors.Connectors {
		if c.Name == "" {
			problems = append(problems, "connector missing name")
			continue
		}
		if seenConnectors[c.Name] {
			problems = append(problems, fmt.Sprintf("duplicate connector name %q", c.Name))
		}
		seenConnectors[c.Name] = true

		if c.BaseURL == "" {
			problems = append(problems, fmt.Sprintf("connector %q missing base_url", c.Name))
		}
		if c.Auth != nil && c.Auth.Type != AuthNone && c.Auth.Type != "" {
			if c.Auth.Token == "" && c.Auth.TokenEnv != "" {
				if os.Getenv(c.Auth.TokenEnv) == "" {
					problems = append(problems, fmt.Sprintf(
						"connector %q references unset token env var %q", c.Name, c.Auth.TokenEnv))
				}
			}
		}
	}

	for _, wf := range all.Workflows.Workflows {
		if wf.Connector != "" && !seenConnectors[wf.Connector] {
			problems = append(problems, fmt.Sprintf(
				"workflow %q references unknown connector %q", wf.ID, wf.Connector))
		}
	}

	if len(problems) > 0 {
		return &apperrors.ConfigError{
			Key:    "startup",
			Reason: fmt.Sprintf("%d configuration problem(s): %s", len(problems), strings.Join(problems, "; ")),
		}
	}
	return nil
}

// normalizeHotkey canonicalizes a hotkey string for case- and
// whitespace-insensitive comparison, matching the reference
// WorkflowEngine.match_hotkey behavior.
func normalizeHotkey(hotkey string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(hotkey), " ", ""))
}

// NormalizeHotkey exports normalizeHotkey for use by the workflow and
// agent packages, which need identical hotkey resolution semantics.
func NormalizeHotkey(hotkey string) string {
	return normalizeHotkey(hotkey)
}
