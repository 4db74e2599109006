// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/chatterhq/chatter/internal/logging"
)

// NewSessionsCmd creates the sessions command group.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain stored sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions once and exit",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	})

	return cmd
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.Setup("chatter", version, logging.Options{
		Format: cfg.Log.Format,
		Level:  cfg.Log.Level,
	}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Manager.SweepExpired(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("expired sessions removed", slog.Int64("count", n), slog.String("backend", cfg.Sessions.Backend))
	cmd.Printf("Removed %d expired sessions\n", n)
	return nil
}
