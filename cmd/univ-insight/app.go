// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/univ-insight/internal/catalog"
	"github.com/pdiddy/univ-insight/internal/crawl"
	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/internal/logging"
	"github.com/pdiddy/univ-insight/internal/recommend"
	"github.com/pdiddy/univ-insight/internal/report"
	"github.com/pdiddy/univ-insight/internal/session"
	"github.com/pdiddy/univ-insight/internal/users"
	"github.com/pdiddy/univ-insight/internal/views"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// app wires the session store, gateway and clients for one command run.
type app struct {
	cfg     types.ClientConfig
	logger  *slog.Logger
	store   *session.Store
	gw      *gateway.Gateway
	samples *views.Samples

	catalog   *catalog.Client
	recommend *recommend.Client
	reports   *report.Client
	crawl     *crawl.Client
	users     *users.Client
}

// newApp opens the session, restores the persisted identity and builds
// the clients. The caller must call close.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg := clientConfig(viper.GetViper(), loadedSecrets)
	if off, _ := cmd.Flags().GetBool("no-fallback"); off {
		cfg.Fallback.Enabled = false
	}
	logger := logging.New(cfg.Log, os.Stderr)

	store, err := session.Open(cfg.Session, logger)
	if err != nil {
		return nil, err
	}
	store.Rehydrate(ctx)

	gw, err := gateway.New(cfg.API, gateway.WithIdentity(store), gateway.WithLogger(logger))
	if err != nil {
		store.Close()
		return nil, err
	}

	var samples *views.Samples
	if cfg.Fallback.Enabled {
		samples, err = views.LoadSamples()
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	cat := catalog.New(gw)
	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		gw:        gw,
		samples:   samples,
		catalog:   cat,
		recommend: recommend.New(gw),
		reports:   report.New(gw),
		crawl:     crawl.New(gw, cat),
		users:     users.New(gw),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing session store", "error", err)
	}
}

// requireLogin fails early for commands that act as the current user.
func (a *app) requireLogin() error {
	if !a.store.IsAuthenticated() {
		return fmt.Errorf("%w: run \"univ-insight login\" first", views.ErrNotAuthenticated)
	}
	return nil
}

// withApp adapts a command body that needs the wired app.
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return run(ctx, a, cmd, args)
	}
}
