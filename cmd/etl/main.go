package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/quake-strec-etl/internal/adapter/archive"
	"github.com/couchcryptid/quake-strec-etl/internal/adapter/comcat"
	"github.com/couchcryptid/quake-strec-etl/internal/adapter/eventxml"
	httpadapter "github.com/couchcryptid/quake-strec-etl/internal/adapter/http"
	"github.com/couchcryptid/quake-strec-etl/internal/adapter/inbox"
	kafkaadapter "github.com/couchcryptid/quake-strec-etl/internal/adapter/kafka"
	"github.com/couchcryptid/quake-strec-etl/internal/adapter/pdl"
	"github.com/couchcryptid/quake-strec-etl/internal/config"
	"github.com/couchcryptid/quake-strec-etl/internal/domain"
	"github.com/couchcryptid/quake-strec-etl/internal/observability"
	"github.com/couchcryptid/quake-strec-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, tracingConfig(cfg), logger)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	lookup := newLookup(cfg, metrics, logger)

	// Source: Kafka topic or watched inbox directory.
	var (
		extractor pipeline.BatchExtractor
		closers   []io.Closer
		loaders   pipeline.MultiLoader
	)
	switch cfg.SourceMode {
	case config.SourceInbox:
		watcher, err := inbox.NewWatcher(cfg.InboxDir, logger)
		if err != nil {
			logger.Error("failed to watch inbox", "dir", cfg.InboxDir, "error", err)
			os.Exit(1)
		}
		extractor = watcher
		closers = append(closers, watcher)
		logger.Info("inbox source enabled", "dir", cfg.InboxDir)
	default:
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		extractor = reader
		loaders = append(loaders, writer)
		closers = append(closers, reader, writer)
	}

	if cfg.Archive.Enabled {
		var notifier archive.Notifier
		if cfg.PDL.Enabled {
			notifier = pdl.NewDispatcher(cfg.PDL, metrics, logger)
			logger.Info("pdl dispatch enabled", "dir", cfg.PDL.Dir, "config_file", cfg.PDL.ConfigFile)
		}
		loaders = append(loaders, archive.NewStore(cfg.Archive.Dir, notifier, metrics, logger))
		logger.Info("archive enabled", "dir", cfg.Archive.Dir)
	}
	if len(loaders) == 0 {
		logger.Error("no result sinks configured: enable ARCHIVE_ENABLED or use SOURCE_MODE=kafka")
		os.Exit(1)
	}

	fallback := domain.NodalPlane{Strike: cfg.Fallback.Strike, Dip: cfg.Fallback.Dip, Rake: cfg.Fallback.Rake}
	transformer := pipeline.NewTransformer(eventxml.Load, lookup, fallback, metrics, logger)
	p := pipeline.New(extractor, transformer, loaders, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return p.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "error", err)
		}
	}
	observability.ShutdownTracing(context.Background(), shutdownTracing, logger)

	logger.Info("shutdown complete")
}

// newLookup returns the cached ComCat lookup, or nil when disabled.
func newLookup(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.MechanismLookup {
	if !cfg.ComCat.Enabled {
		logger.Info("comcat mechanism lookup disabled")
		return nil
	}
	client := comcat.NewClient(cfg.ComCat.URL, cfg.ComCat.Timeout, metrics, logger)
	metrics.CatalogEnabled.Set(1)
	logger.Info("comcat mechanism lookup enabled",
		"url", cfg.ComCat.URL,
		"cache_size", cfg.ComCat.CacheSize,
		"cache_ttl", cfg.ComCat.CacheTTL,
	)
	return comcat.NewCachedLookup(client, cfg.ComCat.CacheSize, cfg.ComCat.CacheTTL, clockwork.NewRealClock(), metrics)
}

func tracingConfig(cfg *config.Config) observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.OTLPEndpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	}
}
