// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/msgboard/internal/config"
	"github.com/holomush/msgboard/internal/store"
)

// NewMigrateCmd creates the migrate subcommand and its actions.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or inspect the PostgreSQL schema. With the mongo driver, "up"
creates the collection indexes instead.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(cmd, func(cfg *config.Config) error {
				return runMigrateUp(cmd.Context(), cfg, cmd, nil)
			})
		},
	})
	var all bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(cmd, func(cfg *config.Config) error {
				return runMigrateDown(cfg, cmd, all, nil)
			})
		},
	}
	down.Flags().BoolVar(&all, "all", false, "roll back every migration (drops all board data)")
	cmd.AddCommand(down)
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(cmd, func(cfg *config.Config) error {
				return runMigrateVersion(cfg, cmd, nil)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(cmd, func(cfg *config.Config) error {
				return runMigrateStatus(cfg, cmd, nil)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied and clear the dirty flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withConfig(cmd, func(cfg *config.Config) error {
				return runMigrateForce(cfg, cmd, v, nil)
			})
		},
	})

	return cmd
}

func withConfig(cmd *cobra.Command, fn func(*config.Config) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg)
	return fn(cfg)
}

// parseForceVersion reads the leading integer of s.
func parseForceVersion(s string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &v); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be an integer: %q", s)
	}
	return v, nil
}

// openMigrator creates a migrator for the configured Postgres database.
func openMigrator(cfg *config.Config, deps *MigrateDeps) (Migrator, error) {
	if cfg.Storage.Driver != config.DriverPostgres {
		return nil, oops.Code(config.CodeInvalid).
			With("driver", cfg.Storage.Driver).
			Errorf("schema migrations need the postgres driver, got %q", cfg.Storage.Driver)
	}
	m, err := deps.MigratorFactory(cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, oops.Code("MIGRATION_INIT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	return m, nil
}

func closeMigrator(cmd *cobra.Command, m Migrator) {
	if err := m.Close(); err != nil {
		cmd.PrintErrf("warning: closing migrator: %v\n", err)
	}
}

func runMigrateUp(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *MigrateDeps) error {
	deps = deps.withDefaults()

	if cfg.Storage.Driver == config.DriverMongo {
		storage := cfg.Storage
		storage.AutoMigrate = true
		b, err := deps.BackendOpener(ctx, storage, nil)
		if err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "create mongo indexes").Wrap(err)
		}
		if err := b.Close(ctx); err != nil {
			cmd.PrintErrf("warning: closing storage: %v\n", err)
		}
		cmd.Println("MongoDB indexes are in place")
		return nil
	}

	m, err := openMigrator(cfg, deps)
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, m)

	cmd.Println("Running migrations...")
	if err := m.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	return printVersion(cmd, m)
}

func runMigrateDown(cfg *config.Config, cmd *cobra.Command, all bool, deps *MigrateDeps) error {
	m, err := openMigrator(cfg, deps.withDefaults())
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, m)

	rollback := func() error { return m.Steps(-1) }
	if all {
		rollback = m.Down
	}
	if err := rollback(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "roll back migration").Wrap(err)
	}
	return printVersion(cmd, m)
}

func runMigrateVersion(cfg *config.Config, cmd *cobra.Command, deps *MigrateDeps) error {
	m, err := openMigrator(cfg, deps.withDefaults())
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, m)
	return printVersion(cmd, m)
}

func runMigrateStatus(cfg *config.Config, cmd *cobra.Command, deps *MigrateDeps) error {
	m, err := openMigrator(cfg, deps.withDefaults())
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, m)

	if err := printVersion(cmd, m); err != nil {
		return err
	}

	applied, err := m.AppliedMigrations()
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "list applied migrations").Wrap(err)
	}
	pending, err := m.PendingMigrations()
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "list pending migrations").Wrap(err)
	}

	if err := printMigrations(cmd, "Applied", applied); err != nil {
		return err
	}
	return printMigrations(cmd, "Pending", pending)
}

func printMigrations(cmd *cobra.Command, label string, versions []uint) error {
	if len(versions) == 0 {
		cmd.Printf("%s: none\n", label)
		return nil
	}
	cmd.Printf("%s:\n", label)
	for _, v := range versions {
		name, err := store.MigrationName(v)
		if err != nil {
			return oops.Code("MIGRATION_FAILED").With("version", v).Wrap(err)
		}
		cmd.Printf("  %s\n", name)
	}
	return nil
}

func runMigrateForce(cfg *config.Config, cmd *cobra.Command, v int, deps *MigrateDeps) error {
	m, err := openMigrator(cfg, deps.withDefaults())
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, m)

	if err := m.Force(v); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "force version").With("version", v).Wrap(err)
	}
	return printVersion(cmd, m)
}

func printVersion(cmd *cobra.Command, m Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "read schema version").Wrap(err)
	}
	if dirty {
		cmd.Printf("Schema version: %d (dirty)\n", v)
		return nil
	}
	cmd.Printf("Schema version: %d\n", v)
	return nil
}
