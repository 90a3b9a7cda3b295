package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"savings/internal/app"
	"savings/internal/cli"
	"savings/internal/config"
	"savings/internal/log"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:          "savings",
	Short:        "Savings goal tracker",
	Long:         "Track savings goals in the browser, or inspect them from the terminal.",
	RunE:         runServe,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
}

// env is what every command needs: configuration, a logger, an opened store
// and a controller loaded from it.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	store  *cli.Store
	ctrl   *app.Controller
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("Failed to close storage", log.FieldError, err)
	}
}

// bootstrap loads .env and configuration, opens the configured backend and
// loads the saved goals. fallbackLevel applies when neither the flag nor
// LOG_LEVEL is set.
func bootstrap(ctx context.Context, fallbackLevel string) (*env, error) {
	cli.LoadEnvFile()

	level := flagLogLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = fallbackLevel
	}
	logger := cli.SetupLogger(level)

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return nil, err
	}

	store, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	ctrl, err := cli.NewController(ctx, logger, cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, store: store, ctrl: ctrl}, nil
}
