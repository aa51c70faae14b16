// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/holomush/msgboard/internal/config"
	"github.com/holomush/msgboard/internal/logging"
	"github.com/holomush/msgboard/internal/xdg"
)

// serviceName identifies the process in logs.
const serviceName = "msgboard"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the msgboard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "msgboard",
		Short: "msgboard - a message board API",
		Long: `msgboard serves a JSON message board: accounts with cookie sessions,
authors, their articles and the comments on them, stored in PostgreSQL,
MongoDB or memory.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSessionsCmd())

	return cmd
}

// loadConfig reads the configuration for cmd from the config file, the
// environment and the flags set on the command line. Without --config the
// file is $XDG_CONFIG_HOME/msgboard/config.yaml, if present.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file := configFile
	if file == "" {
		found, err := xdg.DefaultConfigFile()
		if err != nil {
			return nil, err
		}
		file = found
	}
	return config.Load(config.LoadOptions{
		File:  file,
		Flags: cmd.Flags(),
	})
}

// setupLogging installs the process logger described by cfg.
func setupLogging(cfg *config.Config) *slog.Logger {
	return logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	})
}
