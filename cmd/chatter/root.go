// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/chatterhq/chatter/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the chatter CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatter",
		Short: "Chatter - group chat accounts, sessions and messages",
		Long: `Chatter stores user accounts, sessions, chat groups and messages
in PostgreSQL, with optional Redis-backed sessions.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSessionsCmd())

	return cmd
}

// loadConfig reads the configuration for a subcommand. Persistent flags are
// merged into cmd.Flags() once cobra has parsed the command line. Without
// --config, the XDG default file is read if present.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := config.ResolvePath(configFile)
	if err != nil {
		return nil, err
	}
	return config.Load(path, cmd.Flags())
}
