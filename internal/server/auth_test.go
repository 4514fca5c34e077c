package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerAuthenticator_Authenticate(t *testing.T) {
	var a bearerAuthenticator

	req := httptest.NewRequest(http.MethodGet, "/api/workflows", nil)
	req.Header.Set("Authorization", "Bearer s3cr3t")
	require.NoError(t, a.authenticate(req, "s3cr3t"))

	req = httptest.NewRequest(http.MethodGet, "/api/workflows", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Error(t, a.authenticate(req, "s3cr3t"))

	req = httptest.NewRequest(http.MethodGet, "/api/workflows", nil)
	assert.Error(t, a.authenticate(req, "s3cr3t"))

	req = httptest.NewRequest(http.MethodGet, "/api/workflows", nil)
	req.Header.Set("Authorization", "s3cr3t")
	assert.Error(t, a.authenticate(req, "s3cr3t"))
}

func TestRequireAuth(t *testing.T) {
	s := &Server{token: "s3cr3t"}

	var called bool
	handler := s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/workflows", nil)
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/workflows", nil)
	req.Header.Set("Authorization", "Bearer s3cr3t")
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
