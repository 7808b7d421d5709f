// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway is the single transport boundary between univ-insight and
// the remote API. It owns the base address, the headers, and the mapping of
// every failure onto a small set of error kinds.
//
// The gateway never retries. Report generation and crawl triggering are not
// idempotent, so whether to call again is left to the client packages and,
// in practice, to the user.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/univ-insight/pkg/types"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
)

// IdentitySource supplies the id of the acting user, or "" when nobody is
// logged in. The session store implements it.
type IdentitySource interface {
	UserID() string
}

// Gateway performs JSON-over-HTTP calls against the configured API base.
type Gateway struct {
	client     *http.Client
	base       *url.URL
	userAgent  string
	credential string
	identity   IdentitySource
	logger     *slog.Logger
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the default client. Tests pass httptest clients.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithIdentity attaches the acting user's id as X-User-ID on every call.
func WithIdentity(src IdentitySource) Option {
	return func(g *Gateway) { g.identity = src }
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New validates cfg and builds a Gateway.
func New(cfg types.GatewayConfig, opts ...Option) (*Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q: scheme must be http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	g := &Gateway{
		client:     &http.Client{Timeout: timeout},
		base:       base,
		userAgent:  cfg.UserAgent,
		credential: cfg.Credential,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Request describes one call. Path is relative to the base URL and must
// already have its id segments escaped with url.PathEscape.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Get issues a GET and decodes the JSON response into out.
func (g *Gateway) Get(ctx context.Context, path string, query url.Values, out any) error {
	return g.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST with an optional JSON body and decodes the response
// into out.
func (g *Gateway) Post(ctx context.Context, path string, query url.Values, body, out any) error {
	return g.Do(ctx, Request{Method: http.MethodPost, Path: path, Query: query, Body: body}, out)
}

// Do performs exactly one HTTP round trip. Failures come back as *Error.
// A nil out discards the response body.
func (g *Gateway) Do(ctx context.Context, req Request, out any) error {
	op := req.Method + " " + req.Path

	u := g.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s: encoding request body: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	requestID := g.setHeaders(httpReq, req.Body != nil)

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Debug("api request failed", "op", op, "request_id", requestID, "error", err)
		return &Error{Kind: UpstreamUnavailable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	g.logger.Debug("api request",
		"op", op,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))
	if err != nil {
		return &Error{Kind: UpstreamUnavailable, Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Kind:   statusKind(resp.StatusCode),
			Op:     op,
			Status: resp.StatusCode,
			Detail: errorDetail(data),
		}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Error{Kind: InvalidResponse, Op: op, Status: resp.StatusCode, Detail: "empty response body"}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: InvalidResponse, Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// Ping calls the server's health endpoint, which lives at the origin
// rather than under the API base, and returns the reported status.
func (g *Gateway) Ping(ctx context.Context) (string, error) {
	origin := &url.URL{Scheme: g.base.Scheme, Host: g.base.Host}
	healthURL := origin.JoinPath("health")
	op := "GET /health"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%s: creating request: %w", op, err)
	}
	g.setHeaders(httpReq, false)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: UpstreamUnavailable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Kind: statusKind(resp.StatusCode), Op: op, Status: resp.StatusCode}
	}
	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return "", &Error{Kind: InvalidResponse, Op: op, Status: resp.StatusCode, Err: err}
	}
	return health.Status, nil
}

// setHeaders stamps the common headers and returns the request id.
func (g *Gateway) setHeaders(req *http.Request, hasBody bool) string {
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	if g.credential != "" {
		req.Header.Set("Authorization", "Bearer "+g.credential)
	}
	if g.identity != nil {
		if id := g.identity.UserID(); id != "" {
			req.Header.Set("X-User-ID", id)
		}
	}
	return requestID
}

// errorDetail extracts the message from an error body. The API answers
// {"detail": "..."}; anything else is returned trimmed and truncated.
func errorDetail(data []byte) string {
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		switch d := body.Detail.(type) {
		case string:
			return d
		case nil:
			if body.Message != "" {
				return body.Message
			}
		default:
			if b, err := json.Marshal(d); err == nil {
				return string(b)
			}
		}
	}
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:197] + "..."
	}
	return s
}
