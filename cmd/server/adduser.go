package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/complisync/internal/client/iocli"
	"github.com/iudanet/complisync/internal/server/handlers"
	"github.com/iudanet/complisync/internal/server/storage"
	"github.com/iudanet/complisync/internal/server/storage/sqlite"
)

var adduserPasswordFile string

var adduserCmd = &cobra.Command{
	Use:   "adduser <username>",
	Short: "Create a user account",
	Long: `Create a user account. The password is read from --password-file or prompted
twice; it must be 10 to 72 bytes long.`,
	Args: cobra.ExactArgs(1),
	RunE: runAddUser,
}

func init() {
	adduserCmd.Flags().StringVar(&adduserPasswordFile, "password-file", "", "Read the password from this file")
}

func runAddUser(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	password, err := newPassword(iocli.New(cmd.InOrStdin(), cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	user, err := handlers.NewUser(args[0], password)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return fmt.Errorf("user %q already exists", user.Username)
		}
		return err
	}

	logger.Info("User created", "username", user.Username, "user_id", user.ID)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Created user %s (%s)\n", user.Username, user.ID)
	return nil
}

func newPassword(term iocli.IO) (string, error) {
	if adduserPasswordFile != "" {
		content, err := os.ReadFile(adduserPasswordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		return strings.TrimSpace(string(content)), nil
	}

	password, err := term.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := term.ReadPassword("Repeat password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
