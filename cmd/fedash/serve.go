package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fedash/internal/api"
	"fedash/internal/config"
	"fedash/internal/dashboard"
	"fedash/internal/engine"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	Long: `Starts the HTTP API immediately and loads the dataset in the background.
Until the load completes every /api route answers 503. A failed load is fatal:
the server shuts down and the process exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg, logger)
}

// serve runs the API until ctx is cancelled or the dataset fails to load.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	metric, err := cfg.Dashboard.Metric()
	if err != nil {
		return err
	}
	h := api.NewHandler(nil, dashboard.Settings{Regions: cfg.Dashboard.DefaultRegions, Metric: metric})
	e := api.NewServer(cfg.Server, h, logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server ready (data loading in background)", zap.String("addr", cfg.Server.Addr))
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		t0 := time.Now()
		d, err := engine.LoadCSV(cfg.Data.Path, logger)
		if err != nil {
			logger.Error("Dataset load failed", zap.Error(err))
			return err
		}
		h.SetData(d)
		logger.Info("API fully ready", zap.Duration("took", time.Since(t0)))
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
