// Command folio-reindex rebuilds captions and embeddings for every hosted
// image. Run it after bulk uploads or an asset migration; the API server
// keeps serving stale vectors until the run completes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/averene/folio/internal/config"
	dbRedis "github.com/averene/folio/internal/db/redis"
	"github.com/averene/folio/internal/domain"
	logpkg "github.com/averene/folio/internal/logger"
	mediarepo "github.com/averene/folio/internal/repository/media"
	openaiProvider "github.com/averene/folio/internal/transport/openai"
	reindexuc "github.com/averene/folio/internal/usecase/reindex"
	"github.com/averene/folio/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting folio reindex",
		zap.String("version", version.Version),
		zap.String("env", env),
	)

	if !cfg.Embedding.Configured() {
		logger.Error("Embedding provider not configured; nothing to do")
		return 1
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Error("Failed to create database store", zap.Error(err))
		return 1
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Error("Database not ready", zap.Error(err))
		return 1
	}

	provider := openaiProvider.NewClient(&openaiProvider.Config{
		APIKey:        cfg.Embedding.APIKey,
		BaseURL:       cfg.Embedding.BaseURL,
		Model:         cfg.Embedding.Model,
		CaptionModel:  cfg.Embedding.CaptionModel,
		Dimensions:    cfg.Embedding.Dimensions,
		MaxInputChars: cfg.Embedding.MaxInputChars,
		Logger:        logger,
	})

	repo := mediarepo.New(store, cfg.Storage.KeyPrefix)

	var bar *progressbar.ProgressBar
	svc := reindexuc.New(repo, provider, provider, logger).
		WithProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("Reindexing"),
					progressbar.OptionOnCompletion(func() {
						fmt.Println()
					}),
				)
			}
			_ = bar.Set(done)
		})

	sum, err := svc.Run(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotConfigured) {
			logger.Error("Embedding provider not configured")
		} else {
			logger.Error("Reindex aborted", zap.Error(err))
		}
		return 1
	}

	fmt.Printf("reindex complete: %d total, %d updated, %d failed\n",
		sum.Total, sum.Updated, sum.Failed)

	// Partial failures are reported but do not fail the run.
	return 0
}
