// Package main wires together the ingestion service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcpubsub "cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/mkondo/inforadar/internal/analyzer"
	"github.com/mkondo/inforadar/internal/api"
	archivegcs "github.com/mkondo/inforadar/internal/archive/gcs"
	archivelocal "github.com/mkondo/inforadar/internal/archive/local"
	"github.com/mkondo/inforadar/internal/clock/system"
	"github.com/mkondo/inforadar/internal/config"
	"github.com/mkondo/inforadar/internal/fetch"
	"github.com/mkondo/inforadar/internal/id/uuid"
	"github.com/mkondo/inforadar/internal/logging"
	"github.com/mkondo/inforadar/internal/metrics"
	notifypubsub "github.com/mkondo/inforadar/internal/notify/pubsub"
	"github.com/mkondo/inforadar/internal/pipeline"
	"github.com/mkondo/inforadar/internal/recommend"
	"github.com/mkondo/inforadar/internal/robots"
	storagememory "github.com/mkondo/inforadar/internal/storage/memory"
	storagepg "github.com/mkondo/inforadar/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store pipeline.Store
	if cfg.DB.DSN != "" {
		pgStore, err := storagepg.New(ctx, storagepg.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			logger.Fatal("postgres init failed", zap.Error(err))
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		logger.Warn("db.dsn not set; using in-memory store")
		store = storagememory.NewStore()
	}

	httpTimeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	gate := robots.NewGate(
		cfg.Pipeline.UserAgent,
		time.Duration(cfg.Robots.TimeoutSeconds)*time.Second,
		logger.Named("robots"),
	)
	feeds := fetch.NewFeedFetcher(cfg.Pipeline.UserAgent, httpTimeout, logger.Named("fetch"))
	pages := fetch.NewPageFetcher(fetch.PageConfig{
		UserAgent:  cfg.Pipeline.UserAgent,
		Timeout:    httpTimeout,
		ContentCap: cfg.Pipeline.PageContentCap,
	}, logger.Named("fetch"))

	model := analyzer.NewOpenAIModel(analyzer.ModelConfig{
		Endpoint:   cfg.Model.Endpoint,
		APIKey:     cfg.Model.APIKey,
		ChatModel:  cfg.Model.ChatModel,
		EmbedModel: cfg.Model.EmbedModel,
		Timeout:    time.Duration(cfg.Model.TimeoutSeconds) * time.Second,
	})
	anlz := analyzer.New(model, logger.Named("analyzer"))

	filter := recommend.NewFilter(
		store,
		cfg.Filter.SimilarityThreshold,
		cfg.Filter.HistoryWindow,
		logger.Named("filter"),
	)

	var notifier pipeline.Notifier
	if cfg.PubSub.TopicName != "" {
		client, err := gcpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Warn("pubsub init failed; notifications disabled", zap.Error(err))
		} else {
			n, err := notifypubsub.New(client, cfg.PubSub.TopicName)
			if err != nil {
				logger.Warn("pubsub notifier init failed; notifications disabled", zap.Error(err))
			} else {
				defer n.Stop()
				notifier = n
			}
		}
	}

	var archive pipeline.Archive
	switch {
	case cfg.Archive.GCSBucket != "":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			logger.Warn("gcs init failed; archiving disabled", zap.Error(err))
			break
		}
		a, err := archivegcs.New(client, archivegcs.Config{Bucket: cfg.Archive.GCSBucket})
		if err != nil {
			logger.Warn("gcs archive init failed; archiving disabled", zap.Error(err))
			break
		}
		archive = a
	case cfg.Archive.LocalDir != "":
		a, err := archivelocal.New(archivelocal.Config{BaseDir: cfg.Archive.LocalDir})
		if err != nil {
			logger.Warn("local archive init failed; archiving disabled", zap.Error(err))
			break
		}
		archive = a
	}

	runner := pipeline.NewRunner(
		store,
		gate,
		feeds,
		pages,
		anlz,
		filter,
		notifier,
		archive,
		system.New(),
		uuid.New(),
		pipeline.Config{
			ContentCap:    cfg.Pipeline.ContentCap,
			ArchivePrefix: cfg.Archive.Prefix,
		},
		logger.Named("pipeline"),
	)

	apiServer := api.NewServer(runner, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if interval := cfg.RunInterval(); interval > 0 {
		go runOnInterval(ctx, runner, interval, cfg.RunTimeout(), logger)
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// runOnInterval executes the pipeline on a fixed schedule until the context
// finishes. Each run gets its own time budget.
func runOnInterval(
	ctx context.Context,
	runner *pipeline.Runner,
	interval time.Duration,
	budget time.Duration,
	logger *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, budget)
			result, err := runner.Run(runCtx)
			cancel()
			if err != nil {
				logger.Error("scheduled run failed", zap.Error(err))
				continue
			}
			logger.Info("scheduled run complete", zap.Int("processed", result.Processed))
		}
	}
}
