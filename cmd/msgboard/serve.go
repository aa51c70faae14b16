// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/msgboard/internal/api"
	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/internal/backend"
	"github.com/holomush/msgboard/internal/board"
	"github.com/holomush/msgboard/internal/config"
	"github.com/holomush/msgboard/internal/observability"
)

// readinessTimeout bounds the storage ping behind /healthz/readiness.
const readinessTimeout = 2 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the message board HTTP API and, unless metrics.addr is empty,
the metrics and health server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}
}

// runServeWithDeps runs the API until a signal arrives, ctx ends or a server
// fails. If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deps = deps.withDefaults()
	logger := setupLogging(cfg)

	logger.Info("starting msgboard",
		"version", version,
		"env", cfg.Env,
		"storage_driver", cfg.Storage.Driver,
		"http_addr", cfg.HTTP.Addr)

	b, err := deps.BackendOpener(ctx, cfg.Storage, logger)
	if err != nil {
		return oops.With("operation", "open storage").Wrap(err)
	}
	defer closeBackend(b, logger)

	authSvc, boardSvc, err := buildServices(cfg, b, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownCtx := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	}

	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, readinessChecker(b))
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
	} else {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	apiServer := deps.APIServerFactory(authSvc, boardSvc, api.Options{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		CookieName:        cfg.Session.CookieName,
		SessionTTL:        authSvc.SessionTTL(),
		SecureCookies:     cfg.SecureCookies(),
		Logger:            logger,
		Metrics:           metrics,
	})
	apiErrChan, err := apiServer.Start()
	if err != nil {
		if obsServer != nil {
			stopCtx, stopCancel := shutdownCtx()
			defer stopCancel()
			if stopErr := obsServer.Stop(stopCtx); stopErr != nil {
				logger.Warn("failed to stop observability server during cleanup", "error", stopErr)
			}
		}
		return oops.With("operation", "start api server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api")

	cmd.Printf("msgboard listening on %s\n", apiServer.Addr())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	stopCtx, stopCancel := shutdownCtx()
	defer stopCancel()

	if err := apiServer.Stop(stopCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(stopCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// buildServices wires the auth and board services onto b.
func buildServices(cfg *config.Config, b *backend.Backend, logger *slog.Logger) (*auth.Service, *board.Service, error) {
	hasher, err := auth.NewPasswordHasher(cfg.Password.Algorithm, cfg.Password.Cost)
	if err != nil {
		return nil, nil, oops.With("operation", "create password hasher").Wrap(err)
	}

	authSvc, err := auth.NewAuthServiceWithLogger(b.Users, b.Sessions, hasher, logger,
		auth.WithSessionTTL(cfg.Session.TTL))
	if err != nil {
		return nil, nil, oops.With("operation", "create auth service").Wrap(err)
	}

	boardSvc, err := board.NewService(b.Board, logger)
	if err != nil {
		return nil, nil, oops.With("operation", "create board service").Wrap(err)
	}
	return authSvc, boardSvc, nil
}

// readinessChecker reports ready while the storage answers a ping.
func readinessChecker(b *backend.Backend) observability.ReadinessChecker {
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
		defer cancel()
		return b.Ping(ctx) == nil
	}
}

func closeBackend(b *backend.Backend, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Close(ctx); err != nil {
		logger.Warn("error closing storage", "error", err)
	}
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
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
