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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/claimdex/internal/config"
	"github.com/kailas-cloud/claimdex/internal/domain"
	"github.com/kailas-cloud/claimdex/internal/fingerprint"
	logpkg "github.com/kailas-cloud/claimdex/internal/logger"
	"github.com/kailas-cloud/claimdex/internal/metrics"
	"github.com/kailas-cloud/claimdex/internal/repository/claims"
	chiTransport "github.com/kailas-cloud/claimdex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/claimdex/internal/transport/openai"
	"github.com/kailas-cloud/claimdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/claimdex/internal/usecase/health"
	"github.com/kailas-cloud/claimdex/internal/usecase/intake"
	"github.com/kailas-cloud/claimdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting claimdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_path", cfg.Storage.Path),
	)

	// Open the claim record store
	store, err := claims.Open(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("Failed to open claim store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		logger.Fatal("Claim store not ready", zap.Error(err))
	}
	logger.Info("Claim store opened")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterClassificationMetrics()

	// Build the embedder chain — composition root
	provCfg := cfg.Embedding.Provider
	base := openaiEmb.NewProvider(&openaiEmb.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      provCfg.Model,
		Dimensions: provCfg.Dimensions,
		Name:       provCfg.Name,
		Logger:     logger,
	})

	// Decorator chain: OpenAI -> Cached -> Instrumented
	var provider domain.Provider = base
	if cfg.Embedding.CacheTTLSec > 0 {
		ttl := time.Duration(cfg.Embedding.CacheTTLSec) * time.Second
		provider = embedding.NewCachedProvider(provider, ttl, metrics.EmbeddingCacheTotal)
	}
	provider = embedding.NewInstrumentedProvider(provider, provCfg.Name, provCfg.Model, logger)
	joint := embedding.NewJoint(provider)
	logger.Info("Embedder chain created",
		zap.String("provider", provCfg.Name),
		zap.String("model", provCfg.Model),
		zap.Int("dimensions", provCfg.Dimensions),
		zap.Int("cache_ttl_sec", cfg.Embedding.CacheTTLSec),
	)

	// Use case services
	intakeSvc := intake.New(store, fingerprint.NewPHash(), joint, logger)
	healthSvc := healthuc.New(store, base)

	// HTTP transport
	server := chiTransport.NewServer(intakeSvc, healthSvc, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

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
						"code":    "internal_error",
						"message": "internal error",
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
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
