// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/chat"
	"github.com/chatterhq/chatter/internal/config"
	"github.com/chatterhq/chatter/internal/logging"
	"github.com/chatterhq/chatter/internal/observability"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chatter process",
		Long: `Connect to the configured stores, expose metrics and health probes,
and delete expired sessions in the background until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cmd, cfg)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger, err := logging.SetDefault("chatter", version, logging.Options{
		Format: cfg.Log.Format,
		Level:  cfg.Log.Level,
	})
	if err != nil {
		return err
	}
	logger.Info("starting chatter", "config", cfg.Redacted())

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var obsServer *observability.Server
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, a.ready, auth.RegisterMetrics, chat.RegisterMetrics)
		errCh, err := obsServer.Start()
		if err != nil {
			return err
		}
		go monitorServerErrors(ctx, cancel, errCh, "observability")
	}

	sweeper, err := auth.NewSweeper(a.Manager, cfg.Sessions.SweepInterval, logger)
	if err != nil {
		return err
	}
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("chatter started")
	logger.Info("chatter ready",
		"session_backend", cfg.Sessions.Backend,
		"metrics_addr", cfg.Metrics.Addr,
	)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	cancel()
	<-sweepDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "operation", "stop_observability", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels ctx when a server reports a failure. It
// returns when errCh closes or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
