package main

import (
	"github.com/spf13/cobra"

	"github.com/iudanet/complisync/internal/server"
	"github.com/iudanet/complisync/internal/server/handlers"
	"github.com/iudanet/complisync/internal/server/storage/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server until SIGINT or SIGTERM. Pending migrations are applied on
start. The JWT secret must be at least 32 characters.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("address", ":8080", "Listen address")
	serveCmd.Flags().String("jwt-secret", "", "Secret for signing access tokens")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, closer, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx := cmd.Context()
	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	srv := server.New(server.Config{
		Logger:    logger,
		Address:   cfg.Address,
		Version:   Version,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
		JWT: handlers.JWTConfig{
			Secret:         []byte(cfg.JWTSecret),
			AccessTokenTTL: cfg.TokenTTL,
		},
	}, store)

	logger.Info("Starting server", "address", cfg.Address, "db", cfg.DBPath, "version", Version)
	return srv.Run(ctx)
}
