package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"povdash/internal/api"
	"povdash/internal/cluster"
	"povdash/internal/config"
	"povdash/internal/dashboard"
	"povdash/internal/engine"
	"povdash/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := logging.New(os.Stderr, "info", "json")
		boot.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	// 1. Initialize Echo (Starts Instantly)
	// The API is "live" but answers 503 until the datasets are in.
	h := api.NewHandler(nil, &logger)
	e := api.NewServer(h)

	// 2. Load datasets in the background
	go func() {
		logger.Info().Str("dir", cfg.Data.Dir).Msg("loading datasets")
		t0 := time.Now()

		paths := engine.Paths{
			Wide:   cfg.Data.Path(cfg.Data.Wide),
			Long:   cfg.Data.Path(cfg.Data.Long),
			Series: cfg.Data.Path(cfg.Data.Series),
		}
		data, err := engine.LoadDatasets(ctx, paths, engine.NewRegionSet(cfg.Data.Regions...))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Fatal().Err(err).Msg("load datasets")
		}

		rec := engine.ReconcileCountries(data.Wide, data.Long, data.Regions)
		logger.Info().
			Int("shared", len(rec.Shared)).
			Strs("wide_only", rec.WideOnly).
			Strs("long_only", rec.LongOnly).
			Msg("country names reconciled")

		h.SetData(dashboard.New(data, dashboard.Settings{
			ReportYear:      cfg.Widgets.ReportYear,
			TopN:            cfg.Widgets.TopN,
			DefaultClusters: cfg.Cluster.DefaultK,
			Cluster: cluster.KMeans{
				Seed:     cfg.Cluster.Seed,
				Restarts: cfg.Cluster.Restarts,
				MaxIter:  cfg.Cluster.MaxIter,
				Tol:      cfg.Cluster.Tol,
			},
		}))
		logger.Info().Dur("took", time.Since(t0)).Msg("datasets ready")
	}()

	// 3. Start Server
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}
