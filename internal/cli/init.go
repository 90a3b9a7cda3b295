// Package cli provides common CLI initialization utilities and the terminal
// rendering used by the list and stats commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"savings/internal/app"
	"savings/internal/backend"
	"savings/internal/config"
	"savings/internal/log"
	"savings/internal/render"
	"savings/internal/storage"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		return nil, err
	}
	return cfg, nil
}

// Store is an opened state store plus the backend that owns its resources.
type Store struct {
	*storage.StateStore
	Backend *backend.BackendResult
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.Backend.Close()
}

// OpenStore creates the configured blob backend and wraps it in a StateStore.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config) (*Store, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend",
			log.FieldError, err,
			"backend", cfg.DataBackend)
		return nil, err
	}
	return &Store{
		StateStore: storage.NewStateStore(res.Store, cfg.StorageKey),
		Backend:    res,
	}, nil
}

// NewController builds a controller from the configuration and loads the
// persisted snapshot into it.
func NewController(ctx context.Context, logger *log.Logger, cfg *config.Config, store app.Persister) (*app.Controller, error) {
	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", cfg.CatalogFile, err)
	}

	ro := render.DefaultOptions()
	ro.Currency = cfg.Currency
	ro.DateLayout = cfg.DateLayout

	ctrl := app.New(store, app.Options{
		Catalog:       catalog,
		UndoWindow:    cfg.UndoWindow,
		MaxImageBytes: cfg.MaxImageBytes,
		Render:        ro,
		Logger:        logger,
	})
	ctrl.Load(ctx)
	return ctrl, nil
}

// GracefulShutdown returns a context that is cancelled on SIGINT or SIGTERM.
// The returned stop function releases the signal handler.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
