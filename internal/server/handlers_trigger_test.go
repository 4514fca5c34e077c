package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskbridge/deskbridge/internal/config"
	"github.com/deskbridge/deskbridge/internal/connector"
)

func newTriggerTestServer(t *testing.T, wf config.DeclarativeWorkflow, upstream *httptest.Server) *Server {
	t.Helper()
	catalog := config.ConnectorCatalog{
		Connectors: []config.ConnectorSpec{
			{
				Name:         "icd10-llm",
				BaseURL:      upstream.URL,
				AllowedHosts: []string{"127.0.0.1", "::1"},
				Endpoints:    map[string]string{"classify": "/classify"},
				TimeoutSecs:  5,
			},
		},
	}
	registry, err := connector.NewRegistry(catalog, connector.NewMetricsCollector(nil))
	require.NoError(t, err)

	return &Server{
		token:            "s3cr3t",
		connectors:       registry,
		declarative:      []config.DeclarativeWorkflow{wf},
		declarativeByKey: map[string]config.DeclarativeWorkflow{config.NormalizeHotkey(wf.Hotkey): wf},
		audit:            &AuditLog{maxKept: defaultAuditRingSize},
	}
}

func TestHandleTrigger_RejectsTooShortInputBeforeDispatch(t *testing.T) {
	var dispatched bool
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dispatched = true
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	min := 20
	wf := config.DeclarativeWorkflow{
		ID:              "wf1",
		Hotkey:          "CTRL+ALT+V",
		Connector:       "icd10-llm",
		Endpoint:        "classify",
		RequestTemplate: `{"text":"{input_text}"}`,
		Input:           config.InputBinding{Source: "selected_text", MinLength: &min},
	}
	s := newTriggerTestServer(t, wf, upstream)

	body := `{"hotkey":"CTRL+ALT+V","context":{"selected_text":"too short"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/trigger", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleTrigger(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, dispatched)
}

func TestHandleTrigger_DispatchesWhenInputLengthOK(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"icd10":{"code":"J18.9"}}`))
	}))
	defer upstream.Close()

	min := 3
	wf := config.DeclarativeWorkflow{
		ID:              "wf1",
		Hotkey:          "CTRL+ALT+V",
		Connector:       "icd10-llm",
		Endpoint:        "classify",
		RequestTemplate: `{"text":"{input_text}"}`,
		Input:           config.InputBinding{Source: "selected_text", MinLength: &min},
		Outputs: []config.OutputSpec{
			{TargetField: "diagnosis", ResponsePath: ".icd10.code"},
		},
	}
	s := newTriggerTestServer(t, wf, upstream)

	body := `{"hotkey":"CTRL+ALT+V","context":{"selected_text":"patient has asthma"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/trigger", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleTrigger(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
