// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds the transport settings of the gateway.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. It is the only timeout in the
	// client; a call that exceeds it settles as upstream-unavailable.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "univ-insight/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GatewayConfig holds everything the gateway needs to reach the API.
type GatewayConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API base all request paths are relative to
	// (e.g. "http://localhost:8000/api/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Credential is passed verbatim as a bearer token when non-empty. It is
	// never renewed or inspected.
	Credential string `json:"-" yaml:"-"`
}

// SessionConfig holds settings for the session store.
type SessionConfig struct {
	// Path is the SQLite file holding the durable identity mirror.
	Path string `json:"path" yaml:"path"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is debug, info, warn, or error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format"`
}

// SearchConfig holds defaults for paper search.
type SearchConfig struct {
	// Limit is the page size used when the caller gives none (default 20).
	Limit int `json:"limit" yaml:"limit"`
}

// FallbackConfig controls degraded rendering on read paths.
type FallbackConfig struct {
	// Enabled lets read-only views show the bundled sample data set when
	// the API is unreachable. Write paths never fall back.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// ClientConfig groups the configuration of the whole client.
type ClientConfig struct {
	API      GatewayConfig  `json:"api" yaml:"api"`
	Session  SessionConfig  `json:"session" yaml:"session"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Search   SearchConfig   `json:"search" yaml:"search"`
	Fallback FallbackConfig `json:"fallback" yaml:"fallback"`
}
