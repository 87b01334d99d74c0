package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/averene/folio/internal/config"
	dbRedis "github.com/averene/folio/internal/db/redis"
	"github.com/averene/folio/internal/domain"
	logpkg "github.com/averene/folio/internal/logger"
	"github.com/averene/folio/internal/metrics"
	mediarepo "github.com/averene/folio/internal/repository/media"
	chiTransport "github.com/averene/folio/internal/transport/chi"
	openaiProvider "github.com/averene/folio/internal/transport/openai"
	healthuc "github.com/averene/folio/internal/usecase/health"
	mediauc "github.com/averene/folio/internal/usecase/media"
	searchuc "github.com/averene/folio/internal/usecase/search"
	"github.com/averene/folio/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting folio API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	if err := mediarepo.EnsureIndex(ctx, store, cfg.Storage.KeyPrefix); err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err))
	}
	logger.Info("Search index ready", zap.String("key_prefix", cfg.Storage.KeyPrefix))

	// Embedding provider is optional: without a key the gallery runs with
	// keyword search only.
	var provider *openaiProvider.Client
	if cfg.Embedding.Configured() {
		provider = openaiProvider.NewClient(&openaiProvider.Config{
			APIKey:        cfg.Embedding.APIKey,
			BaseURL:       cfg.Embedding.BaseURL,
			Model:         cfg.Embedding.Model,
			CaptionModel:  cfg.Embedding.CaptionModel,
			Dimensions:    cfg.Embedding.Dimensions,
			MaxInputChars: cfg.Embedding.MaxInputChars,
			Logger:        logger,
		})
		logger.Info("Embedding provider configured",
			zap.String("model", cfg.Embedding.Model),
			zap.String("caption_model", cfg.Embedding.CaptionModel),
		)
	} else {
		logger.Warn("Embedding provider not configured; semantic search disabled")
	}

	repo := mediarepo.New(store, cfg.Storage.KeyPrefix)

	// Pass nil interface (not typed nil pointer!) when the provider is absent.
	var embedder domain.Embedder
	var providerChecker healthuc.ProviderChecker
	if provider != nil {
		embedder = provider
		providerChecker = provider
	}

	mediaSvc := mediauc.New(repo, logger)
	searchSvc := searchuc.New(repo, embedder, searchuc.Limits{
		Default: cfg.Search.DefaultLimit,
		Max:     cfg.Search.MaxLimit,
	}, logger)
	healthSvc := healthuc.New(store, providerChecker)

	server := chiTransport.NewServer(mediaSvc, searchSvc, healthSvc, cfg.Auth.APIKeys, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
