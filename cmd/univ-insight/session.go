// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/univ-insight/internal/session"
	"github.com/pdiddy/univ-insight/internal/views"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// --- login / logout / whoami ---

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Declare who you are and start a session",
	Long: `Login stores your identity in the local session database. There is no
password: the id is whatever identifier the service knows you by.

  univ-insight login --id kakao_123 --name Minji --role student --interests "AI,Robotics"`,
	RunE: withApp(runLogin),
}

func runLogin(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	form := views.LoginForm{}
	form.ID, _ = cmd.Flags().GetString("id")
	form.Name, _ = cmd.Flags().GetString("name")
	form.Role, _ = cmd.Flags().GetString("role")
	form.Interests, _ = cmd.Flags().GetString("interests")

	id, err := views.Login(ctx, a.store, form)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", id.Name, id.Role)
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and erase the stored identity",
	RunE: withApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
		if err := views.NewProfileView(a.store, a.users).Logout(ctx); err != nil {
			if errors.Is(err, session.ErrMirrorRetained) {
				fmt.Fprintf(os.Stderr, "warning: %s still holds your identity; delete it to finish logging out\n", a.cfg.Session.Path)
			}
			return err
		}
		fmt.Println("Logged out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity of the current session",
	RunE: withApp(func(_ context.Context, a *app, _ *cobra.Command, _ []string) error {
		id, ok := a.store.Identity()
		if !ok {
			fmt.Println("Not logged in.")
			return nil
		}
		writeIdentity(os.Stdout, id)
		return nil
	}),
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile (local session, or the server copy with --remote)",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		v := views.NewProfileView(a.store, a.users)
		remote, _ := cmd.Flags().GetBool("remote")
		var (
			id  types.Identity
			err error
		)
		if remote {
			id, err = v.Remote(ctx)
		} else {
			id, err = v.Draft()
		}
		if err != nil {
			return err
		}
		writeIdentity(os.Stdout, id)
		return nil
	}),
}

var profileSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Edit and save your profile",
	Long: `Save applies the given edits, sends the profile to the server, and on
success updates the local session. Nothing is changed locally when the
server refuses or cannot be reached.`,
	RunE: withApp(runProfileSave),
}

func runProfileSave(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	v := views.NewProfileView(a.store, a.users)

	if name, _ := cmd.Flags().GetString("name"); name != "" {
		if err := v.SetName(name); err != nil {
			return err
		}
	}
	adds, _ := cmd.Flags().GetStringSlice("add-interest")
	for _, s := range adds {
		if _, err := v.AddInterest(s); err != nil {
			return err
		}
	}
	removes, _ := cmd.Flags().GetStringSlice("remove-interest")
	for _, s := range removes {
		if _, err := v.RemoveInterest(s); err != nil {
			return err
		}
	}

	id, err := v.Save(ctx)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	fmt.Println("Profile saved.")
	writeIdentity(os.Stdout, id)
	return nil
}

func writeIdentity(w io.Writer, id types.Identity) {
	fmt.Fprintf(w, "ID:        %s\n", id.ID)
	fmt.Fprintf(w, "Name:      %s\n", id.Name)
	fmt.Fprintf(w, "Role:      %s\n", id.Role)
	fmt.Fprintf(w, "Interests: %s\n", dash(strings.Join(id.Interests, ", ")))
	if id.ExternalPageRef != "" {
		fmt.Fprintf(w, "Page:      %s\n", id.ExternalPageRef)
	}
	if !id.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Since:     %s\n", id.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func init() {
	loginCmd.Flags().String("id", "", "user id (required)")
	loginCmd.Flags().String("name", "", "display name (required)")
	loginCmd.Flags().String("role", "student", "student or parent")
	loginCmd.Flags().String("interests", "", "comma-separated interests")
	loginCmd.MarkFlagRequired("id")
	loginCmd.MarkFlagRequired("name")

	profileShowCmd.Flags().Bool("remote", false, "fetch the server's copy of the profile")

	profileSaveCmd.Flags().String("name", "", "new display name")
	profileSaveCmd.Flags().StringSlice("add-interest", nil, "interest to add (repeatable)")
	profileSaveCmd.Flags().StringSlice("remove-interest", nil, "interest to remove (repeatable)")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSaveCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(profileCmd)
}
