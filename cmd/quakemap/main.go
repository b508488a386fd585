package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-map/internal/adapter/feed"
	httpadapter "github.com/couchcryptid/quake-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-map/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/menu"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/couchcryptid/quake-map/internal/pipeline"
	"github.com/couchcryptid/quake-map/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	variant, err := render.ParseVariant(cfg.PageVariant)
	if err != nil {
		logger.Error("invalid page variant", "error", err)
		os.Exit(1)
	}
	periods := domain.NewPeriods(cfg.FeedBaseURL)

	layers := mapview.New(variant.Layers()...)
	menus := menu.NewBoard(
		[]string{menu.SelectTimePeriod, menu.SelectMagnitude, menu.SelectDepth},
		map[string]string{
			menu.SelectTimePeriod: periods[0].Label,
			menu.SelectMagnitude:  domain.MagnitudeTable.All.Name,
			menu.SelectDepth:      domain.DepthTable.All.Name,
		},
	)
	dispatcher := render.NewDispatcher(layers, variant)
	client := feed.NewClient(cfg.FeedTimeout, logger, metrics)

	opts := pipeline.Options{
		Variant:       variant,
		Periods:       periods,
		DefaultPeriod: cfg.DefaultPeriod,
		Overlays: []pipeline.Overlay{
			{Layer: render.LayerTectonicPlates, Source: feed.SourcePlates, URL: cfg.PlatesURL, Style: render.PlateStyle},
			{Layer: render.LayerOrogens, Source: feed.SourceOrogens, URL: cfg.OrogensURL, Style: render.OrogenStyle},
		},
	}

	// Render journal (feature-flagged via JOURNAL_ENABLED).
	var writer *kafkaadapter.Writer
	if cfg.JournalEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Journal = writer
		logger.Info("render journal enabled", "topic", cfg.KafkaJournalTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("render journal disabled")
	}

	p, err := pipeline.New(client, client, dispatcher, layers, menus, opts, logger, metrics)
	if err != nil {
		logger.Error("failed to create pipeline", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, layers, menus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	logger.Info("quake map started", "addr", cfg.HTTPAddr, "variant", string(variant), "period", cfg.DefaultPeriod)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
