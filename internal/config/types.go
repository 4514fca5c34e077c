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

// Package config loads the YAML catalogs read at startup: declarative
// workflows, connectors, and the optional ICD-10 reference table.
package config

// AuthType is the closed set of connector authentication schemes.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBearer AuthType = "bearer_token"
	AuthAPIKey AuthType = "api_key"
	AuthBasic  AuthType = "basic"
)

// AuthConfig describes how a connector authenticates its outbound requests.
type AuthConfig struct {
	Type     AuthType `yaml:"type"`
	Token    string   `yaml:"token,omitempty"`
	TokenEnv string   `yaml:"token_env,omitempty"`
	Header   string   `yaml:"header,omitempty"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
}

// Backoff is the closed set of retry backoff strategies.
type Backoff string

const (
	BackoffFixed       Backoff = "fixed"
	BackoffExponential Backoff = "exponential"
)

// RetryPolicy configures the connector pool's retry algorithm.
type RetryPolicy struct {
	MaxRetries   int     `yaml:"max_retries"`
	Backoff      Backoff `yaml:"backoff"`
	InitialDelay float64 `yaml:"initial_delay"` // seconds
}

// ConnectorSpec is one entry of the connector catalog.
type ConnectorSpec struct {
	Name        string            `yaml:"name"`
	Type        string            `yaml:"type"` // "rest_api"
	BaseURL     string            `yaml:"base_url"`
	Auth        *AuthConfig       `yaml:"auth,omitempty"`
	Endpoints   map[string]string `yaml:"endpoints"`
	TimeoutSecs float64           `yaml:"timeout"`
	RetryPolicy *RetryPolicy      `yaml:"retry_policy,omitempty"`

	// AllowedHosts is an explicit opt-in for base URLs that would otherwise
	// fail the connector pool's SSRF guard (loopback, link-local, or
	// RFC1918 addresses). Empty for every real EHR/LLM endpoint; only
	// needed for a connector deliberately pointed at a local service.
	AllowedHosts []string `yaml:"allowed_hosts,omitempty"`
}

// ConnectorCatalog is the top-level connectors.yaml document.
type ConnectorCatalog struct {
	Connectors []ConnectorSpec `yaml:"connectors"`
}

// InputBinding names which captured context field feeds a declarative
// workflow's input text, plus optional length bounds.
type InputBinding struct {
	Source     string `yaml:"source"` // "selected_text", "clipboard_text", ...
	MinLength  *int   `yaml:"min_length,omitempty"`
	MaxLength  *int   `yaml:"max_length,omitempty"`
}

// OutputSpec is one entry of a declarative workflow's output list.
type OutputSpec struct {
	TargetField    string `yaml:"target_field"`
	ResponsePath   string `yaml:"response_path"` // jq-style path into the connector response
	ContentTemplate string `yaml:"content_template,omitempty"`
	Mode           string `yaml:"mode"`             // replace | append | prepend
	Type           string `yaml:"type,omitempty"`   // text | icd10
	Navigation     string `yaml:"navigation,omitempty"`

	// Label is a static fallback label, used verbatim when neither
	// LabelPath nor LabelTemplate is set.
	Label string `yaml:"label,omitempty"`
	// LabelPath is a jq-style path into the connector response, extracted
	// independently of ResponsePath (e.g. an ICD-10 code's human-readable
	// name living alongside its code in the same response object).
	LabelPath string `yaml:"label_path,omitempty"`
	// LabelTemplate renders against the same environment as
	// ContentTemplate, with the extra variable "label_value" bound to
	// whatever LabelPath extracted. Falls back to that raw value when unset.
	LabelTemplate string `yaml:"label_template,omitempty"`

	ClickBefore    *Point `yaml:"click_before,omitempty"`
	InsertMethod   string `yaml:"insert_method,omitempty"` // paste | type
}

// Point is an (x, y) screen coordinate pair.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// DeclarativeWorkflow is one entry of workflows.yaml.
type DeclarativeWorkflow struct {
	ID               string         `yaml:"id"`
	Hotkey           string         `yaml:"hotkey"`
	Input            InputBinding   `yaml:"input"`
	Connector        string         `yaml:"connector"`
	Endpoint         string         `yaml:"endpoint"`
	Method           string         `yaml:"method,omitempty"`
	RequestTemplate  string         `yaml:"request_template"`
	Outputs          []OutputSpec   `yaml:"outputs"`
	Whitelist        []string       `yaml:"whitelist,omitempty"`
}

// WorkflowCatalog is the top-level workflows.yaml document.
type WorkflowCatalog struct {
	Workflows []DeclarativeWorkflow `yaml:"workflows"`
}

// ICD10Entry is one row of the optional ICD-10 reference catalog.
type ICD10Entry struct {
	Label    string `yaml:"label"`
	Category string `yaml:"category"`
}

// ICD10Catalog maps a code string to its entry.
type ICD10Catalog map[string]ICD10Entry
