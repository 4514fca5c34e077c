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

// Package connector implements the outbound connector pool: named REST
// clients with auth, endpoint tables, timeouts, and retries, fronting every
// call a workflow makes to an external service.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/deskbridge/deskbridge/internal/config"
	"github.com/deskbridge/deskbridge/internal/tracing"
	apperrors "github.com/deskbridge/deskbridge/pkg/errors"
	"golang.org/x/time/rate"
)

var connectorTracer = tracing.Tracer("deskbridge/connector")

// Connector executes outbound REST calls against a named endpoint table.
// It owns its auth material, base URL, timeout, and retry policy.
type Connector struct {
	name      string
	baseURL   string
	endpoints map[string]string
	auth      *config.AuthConfig
	timeout   time.Duration
	retry     config.RetryPolicy
	client    *http.Client
	metrics   *MetricsCollector
	limiter   *rate.Limiter
}

// defaultRateLimit bounds outbound calls per connector to a steady 5 req/s
// with bursts up to 10, protecting rate-limited upstreams (EHR/LLM APIs)
// from being hammered by a runaway workflow loop.
const (
	defaultRateLimit rate.Limit = 5
	defaultRateBurst int        = 10
)

// New builds a Connector from its configuration spec. Any env-var-backed
// auth token is resolved immediately; startup fails closed if it is unset.
func New(spec config.ConnectorSpec, metrics *MetricsCollector) (*Connector, error) {
	if spec.BaseURL == "" {
		return nil, &apperrors.ConfigError{Key: spec.Name, Reason: "connector missing base_url"}
	}
	if err := ValidateURL(spec.BaseURL, spec.AllowedHosts, DefaultBlockedHosts()); err != nil {
		return nil, &apperrors.ConfigError{Key: spec.Name, Reason: "connector base_url is not permitted", Cause: err}
	}

	timeout := time.Duration(spec.TimeoutSecs * float64(time.Second))
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	retry := config.RetryPolicy{Backoff: config.BackoffFixed, InitialDelay: 1}
	if spec.RetryPolicy != nil {
		retry = *spec.RetryPolicy
	}

	c := &Connector{
		name:      spec.Name,
		baseURL:   strings.TrimRight(spec.BaseURL, "/"),
		endpoints: spec.Endpoints,
		auth:      spec.Auth,
		timeout:   timeout,
		retry:     retry,
		client:    &http.Client{Timeout: timeout},
		metrics:   metrics,
		limiter:   rate.NewLimiter(defaultRateLimit, defaultRateBurst),
	}

	if spec.Auth != nil {
		if _, _, err := resolveAuth(spec.Auth); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Name returns the connector's registered name.
func (c *Connector) Name() string { return c.name }

// Execute resolves endpointName against the connector's table, issues the
// request under the connector's retry policy, and returns the parsed JSON
// response body. method defaults to POST. See executeWithRetry for the
// retry/backoff algorithm.
func (c *Connector) Execute(ctx context.Context, endpointName string, payload map[string]any, method string) (map[string]any, error) {
	ctx, span := connectorTracer.Start(ctx, "connector.execute")
	defer span.End()
	span.SetAttributes(attribute.String("connector", c.name), attribute.String("endpoint", endpointName))

	start := time.Now()
	path, ok := c.endpoints[endpointName]
	if !ok {
		available := make([]string, 0, len(c.endpoints))
		for k := range c.endpoints {
			available = append(available, k)
		}
		err := &apperrors.ConnectorError{
			Connector: c.name,
			Code:      apperrors.ConnectorInvalidEndpoint,
			Message:   fmt.Sprintf("unknown endpoint %q", endpointName),
			Details:   map[string]any{"available_endpoints": available},
		}
		c.record(string(err.Code), time.Since(start))
		return nil, err
	}

	if method == "" {
		method = http.MethodPost
	}

	resolvedPath, pathParams, err := substitutePathParams(path, payload)
	if err != nil {
		connErr := &apperrors.ConnectorError{
			Connector: c.name,
			Code:      apperrors.ConnectorInvalidEndpoint,
			Message:   err.Error(),
		}
		c.record(string(connErr.Code), time.Since(start))
		return nil, connErr
	}
	fullURL := c.baseURL + "/" + strings.TrimLeft(resolvedPath, "/")

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		masked := make(map[string]any, len(payload))
		for k, v := range payload {
			masked[k] = MaskSensitiveValue(k, fmt.Sprintf("%v", v))
		}
		slog.Debug("connector request payload", slog.String("connector", c.name), slog.String("endpoint", endpointName), slog.Any("payload", masked))
	}

	bodyData := make(map[string]any, len(payload))
	for k, v := range payload {
		if !pathParams[k] {
			bodyData[k] = v
		}
	}
	body, err := json.Marshal(bodyData)
	if err != nil {
		return nil, apperrors.Wrap(err, "encoding connector request body")
	}

	result, outcome := c.executeWithRetry(ctx, method, fullURL, body)
	c.record(outcome, time.Since(start))
	span.SetAttributes(attribute.String("outcome", outcome))
	if result.err != nil {
		span.SetStatus(codes.Error, result.err.Error())
		return nil, result.err
	}
	return result.body, nil
}

type attemptResult struct {
	body map[string]any
	err  *apperrors.ConnectorError
}

// executeWithRetry implements the §4.1 retry algorithm: attempts
// 0..max_retries, terminal on 2xx/4xx/InvalidResponse, retriable on
// 5xx/timeout/connection errors, sleeping initial_delay (fixed) or
// initial_delay·2^attempt (exponential) between attempts. The final
// attempt's error is surfaced verbatim.
func (c *Connector) executeWithRetry(ctx context.Context, method, fullURL string, body []byte) (attemptResult, string) {
	var last attemptResult

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoffDelay(attempt - 1)):
			case <-ctx.Done():
				return attemptResult{err: &apperrors.ConnectorError{Connector: c.name, Code: apperrors.ConnectorTimeout, Message: "context cancelled during backoff", Cause: ctx.Err()}}, "cancelled"
			}
		}

		data, connErr := c.doOnce(ctx, method, fullURL, body)
		if connErr == nil {
			return attemptResult{body: data}, "success"
		}
		last = attemptResult{err: connErr}
		if !connErr.Retriable() {
			break
		}
	}

	return last, string(last.err.Code)
}

func (c *Connector) backoffDelay(attempt int) time.Duration {
	base := c.retry.InitialDelay
	if base <= 0 {
		base = 1
	}
	seconds := base
	if c.retry.Backoff == config.BackoffExponential {
		seconds = base * math.Pow(2, float64(attempt))
	}
	return time.Duration(seconds * float64(time.Second))
}

func (c *Connector) doOnce(ctx context.Context, method, fullURL string, body []byte) (map[string]any, *apperrors.ConnectorError) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &apperrors.ConnectorError{Connector: c.name, Code: apperrors.ConnectorTimeout, Message: "rate limiter wait cancelled", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, &apperrors.ConnectorError{Connector: c.name, Code: apperrors.ConnectorConnection, Message: "building request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	if connErr := applyAuth(req, c.auth); connErr != nil {
		return nil, connErr
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(c.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, &apperrors.ConnectorError{Connector: c.name, Code: apperrors.ConnectorConnection, Message: "reading response body", Cause: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var parsed map[string]any
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, &apperrors.ConnectorError{
				Connector: c.name, Code: apperrors.ConnectorInvalidResponse,
				Message: "response is not valid JSON",
				Details: map[string]any{"content_prefix": truncate(string(data), 200)},
			}
		}
		return parsed, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &apperrors.ConnectorError{
			Connector: c.name, Code: apperrors.ConnectorHTTP, StatusCode: resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
			Details: map[string]any{"response_headers": MaskSensitiveHeaders(resp.Header)},
		}

	default:
		return nil, &apperrors.ConnectorError{
			Connector: c.name, Code: apperrors.ConnectorServer, StatusCode: resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
			Details: map[string]any{"response_headers": MaskSensitiveHeaders(resp.Header)},
		}
	}
}

func (c *Connector) record(outcome string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordRequest(c.name, outcome, d)
	}
}

// substitutePathParams replaces every "{key}" placeholder in path with the
// matching payload value, rejecting path traversal or null-byte attempts
// before the value is URL-escaped into the path. It returns the set of
// payload keys consumed as path parameters so the caller can exclude them
// from the JSON body.
func substitutePathParams(path string, payload map[string]any) (string, map[string]bool, error) {
	consumed := make(map[string]bool)

	for key, value := range payload {
		placeholder := "{" + key + "}"
		if !strings.Contains(path, placeholder) {
			continue
		}

		strValue := fmt.Sprintf("%v", value)
		if err := ValidatePathParameter(key, strValue); err != nil {
			return "", nil, err
		}

		path = strings.ReplaceAll(path, placeholder, url.PathEscape(strValue))
		consumed[key] = true
	}

	return path, consumed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
