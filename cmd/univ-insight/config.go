// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/univ-insight/internal/logging"
	"github.com/pdiddy/univ-insight/internal/secrets"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// envKeyReplacer maps api.base_url to UNIV_INSIGHT_API_BASE_URL.
var envKeyReplacer = strings.NewReplacer(".", "_")

// clientConfig assembles the client configuration from viper and the
// loaded secrets.
func clientConfig(v *viper.Viper, loaded map[string]string) types.ClientConfig {
	cfg := types.ClientConfig{
		API: types.GatewayConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("api.timeout"),
				UserAgent: v.GetString("api.user_agent"),
			},
			BaseURL:    v.GetString("api.base_url"),
			Credential: secrets.Token(loaded),
		},
		Session:  types.SessionConfig{Path: expandHome(v.GetString("session.path"))},
		Log:      types.LogConfig{Level: v.GetString("log.level"), Format: v.GetString("log.format")},
		Search:   types.SearchConfig{Limit: v.GetInt("search.limit")},
		Fallback: types.FallbackConfig{Enabled: v.GetBool("fallback.enabled")},
	}
	if v.GetBool("verbose") && cfg.Log.Level != "debug" {
		cfg.Log.Level = "debug"
	}
	return cfg
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

// startupLogger reports problems found before the app is wired, such as
// unreadable secret files. Warnings always get through, whatever log.level
// says.
func startupLogger(v *viper.Viper, w io.Writer) *slog.Logger {
	cfg := types.LogConfig{Level: v.GetString("log.level"), Format: v.GetString("log.format")}
	if logging.ParseLevel(cfg.Level) > slog.LevelWarn {
		cfg.Level = "warn"
	}
	return logging.New(cfg, w)
}
