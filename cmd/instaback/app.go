package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/instaback/internal/db"
	"github.com/nkiryanov/instaback/internal/handlers"
	"github.com/nkiryanov/instaback/internal/logger"
	"github.com/nkiryanov/instaback/internal/metrics"
	"github.com/nkiryanov/instaback/internal/repository/postgres"
	redisrepo "github.com/nkiryanov/instaback/internal/repository/redis"
	"github.com/nkiryanov/instaback/internal/service/auth"
	"github.com/nkiryanov/instaback/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/instaback/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	// Release connections to external services
	closers []func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	defaulted, err := c.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config. Err: %w", err)
	}
	for _, name := range defaulted {
		log.Warn("option not set, development default is used. Never do this in production", "option", name)
	}

	app := &ServerApp{ListenAddr: c.ListenAddr, Logger: log}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	app.closers = append(app.closers, pool.Close)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	// Initialize repositories
	// Fingerprints in redis live as long as refresh tokens
	var opts []postgres.StorageOption
	if c.RedisURL != "" {
		client, err := redisrepo.Connect(ctx, c.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}
		app.closers = append(app.closers, func() { _ = client.Close() })

		fingerprints, err := redisrepo.NewFingerprintRepo(client, redisrepo.DefaultPrefix, tokenManager.RefreshTTL())
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("error while creating fingerprint repo. Err: %w", err)
		}
		opts = append(opts, postgres.WithFingerprintRepo(fingerprints))
		log.Info("refresh token fingerprints are kept in redis")
	}
	storage := postgres.NewStorage(pool, opts...)

	registry := metrics.NewRegistry()
	authService, err := auth.NewService(auth.Config{
		Logger:  log,
		Metrics: metrics.NewAuth(registry),
	}, tokenManager, storage)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(auth.DefaultHasher, storage)

	app.Handler = handlers.NewRouter(authService, userService, metrics.Handler(registry), log)

	return app, nil
}

// Close releases db and redis connections
func (s *ServerApp) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
