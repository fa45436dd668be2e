// Package main runs the pool radar service: a refresh loop that polls
// upstream pool data, classifies and scores pools, detects
// opportunities and evaluates alert rules, plus a JSON HTTP API over
// the published state.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/alerting"
	"solana-pool-radar/internal/api"
	"solana-pool-radar/internal/config"
	"solana-pool-radar/internal/feed"
	"solana-pool-radar/internal/history"
	"solana-pool-radar/internal/normalize"
	"solana-pool-radar/internal/observability"
	"solana-pool-radar/internal/opportunity"
	"solana-pool-radar/internal/orchestrator"
	"solana-pool-radar/internal/report"
	"solana-pool-radar/internal/safety"
	"solana-pool-radar/internal/state"
	"solana-pool-radar/internal/storage"
	chstore "solana-pool-radar/internal/storage/clickhouse"
	"solana-pool-radar/internal/storage/memory"
	"solana-pool-radar/internal/storage/migrations"
	pgstore "solana-pool-radar/internal/storage/postgres"
)

func main() {
	loadEnvFile()

	// Parse flags (env vars as defaults)
	configPath := flag.String("config", os.Getenv("RADAR_CONFIG"), "Path to YAML config file")
	poolsURL := flag.String("pools-url", os.Getenv("RADAR_POOLS_URL"), "Pool snapshot HTTP endpoint")
	verifiedURL := flag.String("verified-url", os.Getenv("RADAR_VERIFIED_URL"), "Verified token list HTTP endpoint")
	txWSURL := flag.String("tx-ws-url", os.Getenv("RADAR_TX_WS_URL"), "Transaction stream WebSocket endpoint (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (optional)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional)")
	listen := flag.String("listen", "", "HTTP listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	// Flags override config values.
	if *poolsURL != "" {
		cfg.Sources.PoolsURL = *poolsURL
	}
	if *verifiedURL != "" {
		cfg.Sources.VerifiedTokensURL = *verifiedURL
	}
	if *txWSURL != "" {
		cfg.Sources.TransactionsWSURL = *txWSURL
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.Storage.ClickHouseDSN = *clickhouseDSN
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	if cfg.Sources.PoolsURL == "" || cfg.Sources.VerifiedTokensURL == "" {
		logger.Fatal().Msg("--pools-url and --verified-url are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cancel, cfg, logger); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, logger zerolog.Logger) error {
	metrics := observability.NewMetrics("")

	alertStore, archiveStore, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	hist := history.NewStore(cfg.Limits.MaxTrackedPools, cfg.Limits.MaxTransactionsPerPool)
	container := state.New(state.Options{
		Persister: alertStore,
		History:   hist,
		Triggered: alerting.NewTriggeredLog(cfg.Limits.MaxTriggeredAlerts),
		Logger:    logger.With().Str("component", "state").Logger(),
	})

	if err := container.LoadAlerts(ctx); err != nil {
		return fmt.Errorf("load alerts: %w", err)
	}
	logger.Info().Int("alerts", len(container.Alerts())).Msg("alert rules loaded")

	orch := orchestrator.New(orchestrator.Options{
		Normalizer: normalize.New(safety.NewClassifier(cfg.Safety.MinUnverifiedTVL)),
		Detector:   opportunity.NewDetector(cfg.Limits.MaxOpportunities),
		Monitor:    alerting.NewMonitor(cfg.Alerting.Cooldown, container.Triggered()),
		Container:  container,
		Archive:    archiveStore,
		Metrics:    metrics,
		Logger:     logger.With().Str("component", "orchestrator").Logger(),
	})

	client := feed.NewClient(cfg.Sources.PoolsURL, cfg.Sources.VerifiedTokensURL,
		logger.With().Str("component", "feed").Logger())
	poller := feed.NewPoller(client, cfg.Sources.RefreshInterval,
		func(ctx context.Context, raw []normalize.RawPool, verified map[string]struct{}) {
			orch.Refresh(ctx, raw, verified)
		}, metrics, logger.With().Str("component", "poller").Logger())

	// Transaction stream is optional; without it history fills only
	// from whatever the API layer records.
	if cfg.Sources.TransactionsWSURL != "" {
		stream, err := feed.NewTxStream(ctx, cfg.Sources.TransactionsWSURL, hist.Record,
			metrics, logger.With().Str("component", "txstream").Logger(), nil)
		if err != nil {
			return fmt.Errorf("connect tx stream: %w", err)
		}
		defer stream.Close()
	}

	// Handle shutdown signals.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()
	}()

	apiServer := api.NewServer(container, report.NewGenerator(),
		logger.With().Str("component", "api").Logger())
	httpServer := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: apiServer.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Listen).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go poller.Run(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		cancel()
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

// createStores selects persistence backends. Empty DSNs fall back to
// in-memory stores, which is the default for local runs.
func createStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.AlertStore, storage.ArchiveStore, func(), error) {
	var (
		alertStore   storage.AlertStore   = memory.NewAlertStore()
		archiveStore storage.ArchiveStore = memory.NewArchiveStore()
		cleanups     []func()
	)

	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		alertStore = pgstore.NewAlertStore(pool)
		cleanups = append(cleanups, pool.Close)
		logger.Info().Msg("alerts persisted in postgres")
	}

	if cfg.Storage.ClickHouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.Storage.ClickHouseDSN)
		if err != nil {
			for _, c := range cleanups {
				c()
			}
			return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := migrations.RunClickhouse(ctx, conn); err != nil {
			conn.Close()
			for _, c := range cleanups {
				c()
			}
			return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		archiveStore = chstore.NewArchiveStore(conn)
		cleanups = append(cleanups, func() { conn.Close() })
		logger.Info().Msg("snapshots archived in clickhouse")
	}

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return alertStore, archiveStore, cleanup, nil
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
