package connector

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/deskbridge/deskbridge/internal/config"
	apperrors "github.com/deskbridge/deskbridge/pkg/errors"
)

// applyAuth adds authentication to an outbound request based on the
// connector's auth clause: bearer token, API key header, or basic auth,
// each optionally sourced from an environment variable.
func applyAuth(req *http.Request, auth *config.AuthConfig) *apperrors.ConnectorError {
	if auth == nil {
		return nil
	}

	switch auth.Type {
	case config.AuthNone, "":
		return nil
	case config.AuthBearer:
		token, err := resolveToken(auth)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	case config.AuthAPIKey:
		token, err := resolveToken(auth)
		if err != nil {
			return err
		}
		header := auth.Header
		if header == "" {
			header = "X-API-Key"
		}
		req.Header.Set(header, token)
		return nil
	case config.AuthBasic:
		if auth.Username == "" || auth.Password == "" {
			return &apperrors.ConnectorError{Code: apperrors.ConnectorAuth, Message: "basic auth requires username and password"}
		}
		req.SetBasicAuth(auth.Username, auth.Password)
		return nil
	default:
		return &apperrors.ConnectorError{Code: apperrors.ConnectorAuth, Message: "unsupported auth type " + string(auth.Type)}
	}
}

// resolveAuth validates that an auth clause's token material is available,
// used at connector construction time to fail closed on startup.
func resolveAuth(auth *config.AuthConfig) (header, value string, err *apperrors.ConnectorError) {
	switch auth.Type {
	case config.AuthBearer, config.AuthAPIKey:
		token, tokenErr := resolveToken(auth)
		if tokenErr != nil {
			return "", "", tokenErr
		}
		return "", token, nil
	default:
		return "", "", nil
	}
}

// resolveToken returns the connector's literal token, or reads it from
// token_env, failing with AuthError if the referenced variable is unset.
func resolveToken(auth *config.AuthConfig) (string, *apperrors.ConnectorError) {
	if auth.Token != "" {
		return auth.Token, nil
	}
	if auth.TokenEnv == "" {
		return "", &apperrors.ConnectorError{Code: apperrors.ConnectorAuth, Message: "no token or token_env specified"}
	}
	token := os.Getenv(auth.TokenEnv)
	if token == "" {
		return "", &apperrors.ConnectorError{
			Code:    apperrors.ConnectorAuth,
			Message: fmt.Sprintf("token environment variable %q not set", auth.TokenEnv),
		}
	}
	return token, nil
}

// classifyTransportError maps a transport-level error (as opposed to an
// HTTP status code) into the connector error taxonomy: timeouts first,
// then connection refused/reset/DNS failures by message, then a generic
// connection error.
func classifyTransportError(name string, err error) *apperrors.ConnectorError {
	var netErr net.Error
	if errorsAs(err, &netErr) && netErr.Timeout() {
		return &apperrors.ConnectorError{Connector: name, Code: apperrors.ConnectorTimeout, Message: "request timeout", Cause: err}
	}

	var urlErr *url.Error
	if errorsAs(err, &urlErr) {
		return classifyTransportError(name, urlErr.Err)
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range []string{"connection refused", "connection reset", "no such host", "network unreachable", "eof"} {
		if strings.Contains(msg, kw) {
			return &apperrors.ConnectorError{Connector: name, Code: apperrors.ConnectorConnection, Message: err.Error(), Cause: err}
		}
	}

	return &apperrors.ConnectorError{Connector: name, Code: apperrors.ConnectorConnection, Message: err.Error(), Cause: err}
}

func errorsAs(err error, target any) bool {
	return apperrors.As(err, target)
}
