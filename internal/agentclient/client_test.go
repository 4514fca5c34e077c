package agentclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCoords_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/execute/write_coords", r.URL.Path)

		var req WriteCoordsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 100, req.X)
		assert.Equal(t, "J45.909", req.Content)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(WriteCoordsResponse{Status: "success"})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	resp, err := client.WriteCoords(context.Background(), WriteCoordsRequest{
		X: 100, Y: 200, Content: "J45.909", InsertMethod: "paste",
	})
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
}

func TestWriteCoords_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(WriteCoordsResponse{Status: "error"})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	_, err := client.WriteCoords(context.Background(), WriteCoordsRequest{X: 1, Y: 1})
	assert.Error(t, err)
}
