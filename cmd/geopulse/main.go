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

	"github.com/geopulse-ai/geopulse/internal/config"
	"github.com/geopulse-ai/geopulse/internal/db"
	dbValkey "github.com/geopulse-ai/geopulse/internal/db/valkey"
	logpkg "github.com/geopulse-ai/geopulse/internal/logger"
	"github.com/geopulse-ai/geopulse/internal/metrics"
	"github.com/geopulse-ai/geopulse/internal/repository/placecache"
	agentTransport "github.com/geopulse-ai/geopulse/internal/transport/agent"
	chiTransport "github.com/geopulse-ai/geopulse/internal/transport/chi"
	"github.com/geopulse-ai/geopulse/internal/transport/geodata"
	"github.com/geopulse-ai/geopulse/internal/usecase/dispatch"
	healthuc "github.com/geopulse-ai/geopulse/internal/usecase/health"
	insightsuc "github.com/geopulse-ai/geopulse/internal/usecase/insights"
	"github.com/geopulse-ai/geopulse/internal/usecase/pipeline"
	"github.com/geopulse-ai/geopulse/internal/version"
)

const cacheReadinessTimeout = 10 * time.Second

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting geopulse API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	// Place cache is optional: no addrs, or an unreachable store, degrades
	// to direct provider calls.
	var store db.Store
	if len(cfg.Cache.Addrs) > 0 {
		valkeyStore, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Warn("Failed to create cache store, continuing without cache", zap.Error(err))
		} else if err := valkeyStore.WaitForReady(context.Background(), cacheReadinessTimeout); err != nil {
			logger.Warn("Cache store not ready, continuing without cache", zap.Error(err))
			valkeyStore.Close()
		} else {
			store = valkeyStore
			defer store.Close()
			logger.Info("Connected to cache store")
		}
	}

	// Geodata vendor client with rate-limit retry built in.
	geoClient := geodata.NewClient(&geodata.Config{
		APIKey:     cfg.Geodata.APIKey,
		BaseURL:    cfg.Geodata.BaseURL,
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
		Logger:     logger,
	})

	// Details go through the cache decorator when a store is available.
	var details dispatch.DetailsProvider = geoClient
	if store != nil {
		details = placecache.New(
			geoClient, store, cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.PlaceCacheTotal, logger,
		)
	}

	planner := insightsuc.New(
		geoClient,
		cfg.Insights.MaxListSize, cfg.Insights.MinRadiusM, cfg.Insights.SafetyMargin,
		logger,
	)

	dispatcher := dispatch.New(dispatch.NewRegistry(geoClient, details, planner), logger)

	domainAgent := agentTransport.NewDomainAgent(&agentTransport.Config{
		APIKey:      cfg.Agent.APIKey,
		BaseURL:     cfg.Agent.BaseURL,
		Model:       cfg.Agent.Model,
		Temperature: cfg.Agent.Temperature,
		Logger:      logger,
	})
	mapAgent := agentTransport.NewMapAgent(&agentTransport.Config{
		APIKey:      cfg.Agent.APIKey,
		BaseURL:     cfg.Agent.BaseURL,
		Model:       cfg.Agent.MapModel,
		Temperature: cfg.Agent.Temperature,
		Logger:      logger,
	})

	guarantee := pipeline.NewMapGuarantee(mapAgent, geoClient, pipeline.SeedSearchConfig{
		RadiusM:  cfg.Search.DefaultRadiusM,
		Category: cfg.Search.FallbackCategory,
		Limit:    cfg.Search.FallbackLimit,
	}, logger)

	pipelineSvc := pipeline.NewService(domainAgent, dispatcher, guarantee, cfg.Search.DefaultRadiusM, logger)

	// Pass nil interface (not typed nil pointer!) if the cache is absent.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(cachePinger, domainAgent)

	server := chiTransport.NewServer(pipelineSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
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
