package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (a *App) loginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the sync server",
		Long: `Authenticate against auth.php and store the session in the local database.

The password is taken from COMPLISYNC_PASSWORD, then --password-file, then an
interactive prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runLogin(cmd.Context(), username)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when empty)")
	cmd.Flags().StringVar(&a.pwFile, "password-file", "", "Read the password from this file")
	return cmd
}

func (a *App) runLogin(ctx context.Context, username string) error {
	if err := a.open(ctx); err != nil {
		return err
	}

	if username == "" {
		var err error
		username, err = a.io.ReadInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	password, err := a.readPassword()
	if err != nil {
		return err
	}

	session, err := a.sessions.Login(ctx, a.client.BaseURL(), username, password)
	if err != nil {
		return err
	}

	a.io.Println("✓ Login successful!")
	a.io.Printf("Username: %s\n", session.Username)
	a.io.Printf("User ID:  %s\n", session.UserID)
	if session.ExpiresAt > 0 {
		a.io.Printf("Session expires: %s\n", time.Unix(session.ExpiresAt, 0).Format(time.RFC3339))
	}
	return nil
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Long: `Remove the stored session. Local tables and pending changes are kept and
are pushed after the next login.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.open(ctx); err != nil {
				return err
			}
			if err := a.sessions.Logout(ctx); err != nil {
				return err
			}

			a.io.Println("✓ Logged out")
			if pending := a.store.PendingTables(ctx); len(pending) > 0 {
				a.io.Printf("⚠️  %d table(s) still have unsynchronized changes\n", len(pending))
			}
			return nil
		},
	}
}
