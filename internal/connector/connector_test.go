package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskbridge/deskbridge/internal/config"
)

func TestNew_RejectsLoopbackWithoutAllowlist(t *testing.T) {
	_, err := New(config.ConnectorSpec{Name: "x", BaseURL: "http://127.0.0.1:9999"}, NewMetricsCollector(nil))
	require.Error(t, err)
}

func TestNew_AllowsLoopbackWithExplicitAllowlist(t *testing.T) {
	c, err := New(config.ConnectorSpec{
		Name:         "x",
		BaseURL:      "http://127.0.0.1:9999",
		AllowedHosts: []string{"127.0.0.1"},
	}, NewMetricsCollector(nil))
	require.NoError(t, err)
	assert.Equal(t, "x", c.Name())
}

func TestExecute_SuccessAndUnknownEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classify", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	c, err := New(config.ConnectorSpec{
		Name:         "x",
		BaseURL:      srv.URL,
		AllowedHosts: []string{"127.0.0.1"},
		Endpoints:    map[string]string{"classify": "/classify"},
		TimeoutSecs:  5,
	}, NewMetricsCollector(nil))
	require.NoError(t, err)

	resp, err := c.Execute(context.Background(), "classify", map[string]any{}, "POST")
	require.NoError(t, err)
	assert.Equal(t, true, resp["ok"])

	_, err = c.Execute(context.Background(), "does-not-exist", map[string]any{}, "POST")
	assert.Error(t, err)
}

func TestExecute_SubstitutesPathParametersAndStripsThemFromBody(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	c, err := New(config.ConnectorSpec{
		Name:         "x",
		BaseURL:      srv.URL,
		AllowedHosts: []string{"127.0.0.1"},
		Endpoints:    map[string]string{"get_patient": "/patients/{patient_id}"},
		TimeoutSecs:  5,
	}, NewMetricsCollector(nil))
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), "get_patient", map[string]any{
		"patient_id": "abc-123",
		"note":       "hello",
	}, "GET")
	require.NoError(t, err)

	assert.Equal(t, "/patients/abc-123", gotPath)
	assert.NotContains(t, gotBody, "patient_id")
	assert.Equal(t, "hello", gotBody["note"])
}

func TestExecute_RejectsPathTraversalInPathParameter(t *testing.T) {
	c, err := New(config.ConnectorSpec{
		Name:         "x",
		BaseURL:      "http://127.0.0.1:9",
		AllowedHosts: []string{"127.0.0.1"},
		Endpoints:    map[string]string{"get_patient": "/patients/{patient_id}"},
	}, NewMetricsCollector(nil))
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), "get_patient", map[string]any{
		"patient_id": "../../etc/passwd",
	}, "GET")
	require.Error(t, err)
}

func TestRegistry_GetAndCount(t *testing.T) {
	catalog := config.ConnectorCatalog{
		Connectors: []config.ConnectorSpec{
			{Name: "a", BaseURL: "https://a.example.com", Endpoints: map[string]string{}},
			{Name: "b", BaseURL: "https://b.example.com", Endpoints: map[string]string{}},
		},
	}
	registry, err := NewRegistry(catalog, NewMetricsCollector(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Count())

	c, err := registry.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", c.Name())

	_, err = registry.Get("missing")
	assert.Error(t, err)
}
