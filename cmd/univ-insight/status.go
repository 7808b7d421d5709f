// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the API and show the session state",
	RunE: withApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
		fmt.Printf("API:     %s\n", a.cfg.API.BaseURL)
		if st, err := a.gw.Ping(ctx); err != nil {
			fmt.Printf("Health:  unreachable (%v)\n", err)
		} else {
			fmt.Printf("Health:  %s\n", st)
		}

		if id, ok := a.store.Identity(); ok {
			fmt.Printf("Session: %s (%s)\n", id.Name, id.ID)
		} else {
			fmt.Println("Session: not logged in")
		}
		fmt.Printf("Store:   %s\n", a.cfg.Session.Path)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
