// Package server собирает эталонный сервер синхронизации: маршруты, middleware и
// жизненный цикл http.Server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/complisync/internal/server/handlers"
	"github.com/iudanet/complisync/internal/server/middleware"
	"github.com/iudanet/complisync/internal/server/storage"
)

const (
	// shutdownTimeout сколько ждем завершения активных запросов при остановке
	shutdownTimeout = 10 * time.Second

	// Вход ограничен отдельно от синхронизации: 1 попытка в секунду, всплеск 5
	loginRate  = 1.0
	loginBurst = 5
)

// Store is everything the server needs from its database.
type Store interface {
	storage.UserStorage
	storage.SnapshotStorage
	handlers.Pinger
}

// Config содержит параметры сервера
type Config struct {
	Logger    *slog.Logger
	Address   string
	Version   string
	JWT       handlers.JWTConfig
	RateLimit float64
	Burst     int
}

// Server is the reference sync server.
type Server struct {
	logger   *slog.Logger
	handler  http.Handler
	limiters []*middleware.RateLimiter
	address  string
}

// New builds the routes and middleware chain.
func New(cfg Config, store Store) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := handlers.NewAuthHandler(logger, store, cfg.JWT)
	tableHandler := handlers.NewTableHandler(logger, store)
	healthHandler := handlers.NewHealthHandler(logger, store, cfg.Version)

	authed := middleware.AuthMiddleware(logger, cfg.JWT)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth.php", authHandler.Login)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /global-load.php", authed(http.HandlerFunc(tableHandler.LoadGlobal)))
	mux.Handle("POST /global-sync.php", authed(http.HandlerFunc(tableHandler.SyncGlobal)))
	// {T}-load.php и {T}-sync.php: имя таблицы разбирает TableHandler
	mux.Handle("GET /{endpoint}", authed(http.HandlerFunc(tableHandler.Load)))
	mux.Handle("POST /{endpoint}", authed(http.HandlerFunc(tableHandler.Sync)))

	loginLimiter := middleware.NewRateLimiter(loginRate, loginBurst, logger)
	defaultLimiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.Burst, logger)
	limits := map[string]*middleware.RateLimiter{"/auth.php": loginLimiter}

	// Цепочка: recovery -> logging -> rate limit -> mux
	var h http.Handler = mux
	h = middleware.RateLimitByPathMiddleware(limits, defaultLimiter, logger)(h)
	h = middleware.LoggingWithSkip(logger, []string{"/health"})(h)
	h = middleware.RecoveryMiddleware(logger)(h)

	return &Server{
		logger:   logger,
		handler:  h,
		limiters: []*middleware.RateLimiter{loginLimiter, defaultLimiter},
		address:  cfg.Address,
	}
}

// Handler returns the full middleware chain, used by tests with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Close stops the rate limiter cleanup goroutines.
func (s *Server) Close() {
	for _, l := range s.limiters {
		l.Stop()
	}
}
