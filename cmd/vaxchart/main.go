package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/vaxchart/internal/cache"
	"github.com/rickgao/vaxchart/internal/chart"
	"github.com/rickgao/vaxchart/internal/config"
	"github.com/rickgao/vaxchart/internal/database"
	"github.com/rickgao/vaxchart/internal/dataset"
	"github.com/rickgao/vaxchart/internal/logging"
	"github.com/rickgao/vaxchart/internal/poller"
	"github.com/rickgao/vaxchart/internal/server"
	"github.com/rickgao/vaxchart/internal/source"
	"github.com/rickgao/vaxchart/internal/version"
	"github.com/rickgao/vaxchart/internal/writer"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the config")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "load env file: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	logger.Info("starting vaxchart",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
		"source_url", cfg.Source.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	checks := make(map[string]server.Pinger)

	// Optional Redis chart cache
	chartCache := cache.New(nil, cfg.Redis.TTL, logger)
	if cfg.Redis.Enabled() {
		logger.Info("connecting to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		rdb, err := cache.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		chartCache = cache.New(rdb, cfg.Redis.TTL, logger)
		checks["redis"] = chartCache
		logger.Info("redis connected")
	}

	// Optional TimescaleDB persistence
	var pool *pgxpool.Pool
	if cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Timescale.Host,
			"port", cfg.Database.Timescale.Port,
			"database", cfg.Database.Timescale.Name,
		)
		pool, err = database.Connect(ctx, cfg.Database.Timescale)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool, logger); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		checks["timescaledb"] = pool
		logger.Info("database connected")
	}

	// Dataset source and registry
	userAgent := cfg.Source.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	client := source.NewClient(
		cfg.Source.URL,
		source.WithLogger(logger),
		source.WithTimeout(cfg.Source.Timeout),
		source.WithRetries(cfg.Source.MaxRetries, cfg.Source.RetryBackoff),
		source.WithUserAgent(userAgent),
		source.WithParseOptions(source.ParseOptions{Strict: cfg.Source.Strict}),
	)

	registry := dataset.NewRegistry(dataset.Config{
		RefreshInterval:    cfg.Dataset.RefreshInterval,
		RefreshTimeout:     cfg.Dataset.RefreshTimeout,
		InitialLoadTimeout: cfg.Dataset.InitialLoadTimeout,
	}, client, logger)

	charts := chart.NewService(registry, chartCache, cfg.Chart.Palette, logger)

	// Subscribe before Start so the initial load reaches both consumers.
	hubChanges := registry.Subscribe()
	pollerChanges := registry.Subscribe()

	hub := server.NewHub(cfg.Server.PingInterval, logger)
	srv := server.New(server.Config{
		DefaultLocation: cfg.Chart.DefaultLocation,
		Width:           cfg.Chart.Width,
		Height:          cfg.Chart.Height,
		MetricsPath:     cfg.Metrics.Path,
	}, charts, registry, hub, checks, logger)

	// Start HTTP server early so health reflects the initial load
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting http server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	go hub.Run(ctx, hubChanges)

	// Start dataset registry (initial load)
	logger.Info("starting dataset registry (initial load)...")
	if err := registry.Start(ctx); err != nil {
		logger.Error("failed to start dataset registry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		registry.Stop(shutdownCtx)
	}()

	st := registry.Status()
	logger.Info("dataset registry started",
		"rows", st.Rows,
		"locations", st.Locations,
		"vaccines", st.Vaccines,
	)

	// Writer and warm-up poller
	var handler poller.ChartHandler
	if pool != nil {
		monthly := writer.NewMonthlyWriter(writer.WriterConfig{
			BatchSize:     cfg.Writer.BatchSize,
			FlushInterval: cfg.Writer.FlushInterval,
			BufferSize:    cfg.Writer.BufferSize,
		}, pool, logger)
		if err := monthly.Start(ctx); err != nil {
			logger.Error("failed to start monthly writer", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			monthly.Stop(shutdownCtx)
			stats := monthly.Stats()
			logger.Info("monthly writer totals",
				"inserts", stats.Inserts,
				"flushes", stats.Flushes,
				"errors", stats.Errors,
				"dropped", stats.Dropped,
			)
		}()
		handler = monthly
	}

	warm := poller.New(poller.Config{
		Interval:    cfg.Poller.Interval,
		Concurrency: cfg.Poller.Concurrency,
		Timeout:     cfg.Poller.Timeout,
	}, charts, pollerChanges, handler, logger)
	if err := warm.Start(ctx); err != nil {
		logger.Error("failed to start chart poller", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		warm.Stop(shutdownCtx)
	}()

	logger.Info("vaxchart running",
		"instance_id", cfg.Instance.ID,
		"url", fmt.Sprintf("http://localhost:%d/", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Graceful shutdown of http server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	hub.Close()
	httpServer.Shutdown(shutdownCtx)

	logger.Info("vaxchart stopped")
}
