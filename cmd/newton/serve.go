package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/njchilds90/gonewton/internal/adapters/http"
	redisAdapter "github.com/njchilds90/gonewton/internal/adapters/redis"
	"github.com/njchilds90/gonewton/internal/archive"
	"github.com/njchilds90/gonewton/internal/config"
	"github.com/njchilds90/gonewton/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the calculator over HTTP: POST /v1/solve, archived runs and their
plots under /v1/runs, the tool-call surface on /tool, Prometheus metrics on
/metrics and the OpenAPI document on /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, closeStore, err := openArchive(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("archive close failed", "error", err)
			}
		}()

		handler, err := httpAdapter.NewHandler(httpAdapter.Options{
			Store:         store,
			Metrics:       metrics.New(),
			Logger:        logger,
			MaxBodyBytes:  cfg.Server.MaxBodyBytes,
			MaxIterations: cfg.Solver.MaxIterations,
			Samples:       cfg.Plot.Samples,
			PlotWidth:     cfg.Plot.Width,
			PlotHeight:    cfg.Plot.Height,
		})
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(cfg.Server.ReadTimeout),
			WriteTimeout:      time.Duration(cfg.Server.WriteTimeout),
			IdleTimeout:       60 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("newton server listening", "addr", srv.Addr, "archive", cfg.Archive.Backend)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("newton server stopped gracefully")
		return nil
	},
}

// openArchive builds the configured run archive and its close function.
func openArchive(ctx context.Context, c config.ArchiveConfig) (archive.Store, func() error, error) {
	ttl := time.Duration(c.TTL)
	switch c.Backend {
	case config.BackendRedis:
		s := redisAdapter.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB,
			redisAdapter.WithTTL(ttl),
			redisAdapter.WithPrefix(c.Redis.Prefix))
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendMemory:
		return archive.NewMemory(ttl), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown archive backend %q", c.Backend)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides server.addr)")
}
