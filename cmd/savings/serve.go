package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"savings/internal/cli"
	apphttp "savings/internal/http"
	"savings/internal/log"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web app (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	e, err := bootstrap(context.Background(), "info")
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := cli.GracefulShutdown(e.logger)
	defer stop()

	opts := apphttp.Options{
		Logger:             e.logger,
		CORSAllowedOrigins: e.cfg.CORSAllowedOrigins,
		TrustedProxies:     e.cfg.TrustedProxies,
		RateLimitPerMinute: e.cfg.RateLimitPerMinute,
		MaxUploadBytes:     e.cfg.MaxImageBytes,
		UndoWindow:         e.cfg.UndoWindow,
	}
	if p, ok := e.store.Backend.Store.(apphttp.Pinger); ok {
		opts.Storage = p
	}
	srv := apphttp.NewServer(":"+e.cfg.Port, e.ctrl, opts)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.logger.Info("Starting savings server",
			"port", e.cfg.Port,
			"backend", e.cfg.DataBackend,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("Server error", log.FieldError, err, "port", e.cfg.Port)
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			e.logger.Error("Server shutdown error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	e.logger.Info("Server stopped gracefully")
	return nil
}
