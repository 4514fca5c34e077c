package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/deskbridge/deskbridge/internal/httputil"
)

// bearerAuthenticator verifies the single shared bearer token gating every
// endpoint except root, health and /metrics. Comparison is constant-time so auth
// failures never reveal whether the header or the token was wrong beyond a
// stable discriminator.
type bearerAuthenticator struct{}

func (bearerAuthenticator) extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) && !strings.HasPrefix(header, "bearer ") {
		return "", fmt.Errorf("malformed Authorization header")
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", fmt.Errorf("empty bearer token")
	}
	return token, nil
}

func (bearerAuthenticator) verify(token, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

func (a bearerAuthenticator) authenticate(r *http.Request, secret string) error {
	token, err := a.extractToken(r)
	if err != nil {
		return err
	}
	if !a.verify(token, secret) {
		return fmt.Errorf("invalid bearer token")
	}
	return nil
}

// requireAuth wraps next with bearer-token enforcement against s.token.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.authenticate(r, s.token); err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}
