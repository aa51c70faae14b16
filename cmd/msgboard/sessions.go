// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/msgboard/internal/config"
)

// NewSessionsCmd creates the sessions subcommand.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain stored sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		Long: `Delete every session whose expiry has passed. MongoDB also expires
sessions through a TTL index; pruning there removes what the TTL monitor has
not reached yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(cmd, func(cfg *config.Config) error {
				return runSessionsPrune(cmd.Context(), cfg, cmd, nil)
			})
		},
	})

	return cmd
}

func runSessionsPrune(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deps = deps.withDefaults()
	logger := slog.Default()

	b, err := deps.BackendOpener(ctx, cfg.Storage, logger)
	if err != nil {
		return oops.With("operation", "open storage").Wrap(err)
	}
	defer closeBackend(b, logger)

	authSvc, _, err := buildServices(cfg, b, logger)
	if err != nil {
		return err
	}

	n, err := authSvc.PruneSessions(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Pruned %d expired sessions\n", n)
	return nil
}
