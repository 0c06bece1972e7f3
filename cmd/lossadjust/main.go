package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/bielim/country-risk-etl/internal/adapter/http"
	kafkaadapter "github.com/bielim/country-risk-etl/internal/adapter/kafka"
	"github.com/bielim/country-risk-etl/internal/adapter/worldbank"
	"github.com/bielim/country-risk-etl/internal/config"
	"github.com/bielim/country-risk-etl/internal/domain"
	"github.com/bielim/country-risk-etl/internal/observability"
	"github.com/bielim/country-risk-etl/internal/pipeline"
	"github.com/bielim/country-risk-etl/internal/table"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	tablePath, err := table.Resolve(cfg.IndicatorTablePath, cfg.DataDir)
	if err != nil {
		logger.Error("failed to locate indicator table", "error", err)
		os.Exit(1)
	}
	indicators, err := table.Load(tablePath)
	if err != nil {
		logger.Error("failed to load indicator table", "path", tablePath, "error", err)
		os.Exit(1)
	}
	logger.Info("indicator table loaded",
		"path", tablePath,
		"countries", indicators.Len(),
		"extended", indicators.Extended,
	)

	// GDP fallback for countries whose table row has no gdp_today value
	// (feature-flagged via WORLDBANK_ENABLED).
	var gdp domain.GDPProvider
	if cfg.WorldBankEnabled {
		client := worldbank.NewClient(cfg.WorldBankTimeout, logger)
		gdp = worldbank.NewCachedProvider(
			&meteredGDPProvider{inner: client, metrics: metrics},
			cfg.GDPCacheSize,
		)
		metrics.GDPFetchEnabled.Set(1)
		logger.Info("worldbank gdp fallback enabled", "cache_size", cfg.GDPCacheSize, "timeout", cfg.WorldBankTimeout)
	} else {
		metrics.GDPFetchEnabled.Set(0)
		logger.Info("worldbank gdp fallback disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	adjuster := pipeline.NewLossAdjuster(indicators, domain.AdjustOptions{GDP: gdp}, logger)

	p := pipeline.New(reader, adjuster, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, httpadapter.TableInfo{
		Source:    indicators.Source,
		Countries: indicators.Len(),
		Extended:  indicators.Extended,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start adjustment pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// meteredGDPProvider counts upstream World Bank fetches by outcome. It wraps
// the raw client rather than the cache so cache hits are not counted.
type meteredGDPProvider struct {
	inner   domain.GDPProvider
	metrics *observability.Metrics
}

func (m *meteredGDPProvider) CurrentGDP(ctx context.Context, country string) (float64, error) {
	gdp, err := m.inner.CurrentGDP(ctx, country)
	if err != nil {
		m.metrics.GDPFetchRequests.WithLabelValues("error").Inc()
		return 0, err
	}
	m.metrics.GDPFetchRequests.WithLabelValues("success").Inc()
	return gdp, nil
}
