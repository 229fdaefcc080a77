// Package main is the entry point for the wizard API server.
// It wires all dependencies together and starts the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/assist"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/config"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/draft"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/observability"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/pricing"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/rate"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/scrape"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/transport"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/wizard"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Local development convenience; a missing .env file is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "fashionos-wizard", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	metrics := observability.InitMetrics(prometheus.DefaultRegisterer)
	health := observability.NewHealthHandler()

	// Draft persistence.
	drafts, draftsCloser, err := buildDraftStore(ctx, cfg.Draft, health, logger)
	if err != nil {
		logger.Error("draft store initialization failed", zap.Error(err))
		return 1
	}
	drafts = draft.Instrument(drafts, metrics)

	// AI assistance. A nil factory disables the assist endpoint.
	factory, err := buildAssistantFactory(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("assistant initialization failed", zap.Error(err))
		return 1
	}

	manager := wizard.NewManager(wizard.ManagerOptions{
		Calculator: pricing.NewCalculator(cfg.Pricing.TaxRate),
		Drafts:     drafts,
		Namespace:  cfg.Draft.Namespace,
		Debounce:   cfg.Draft.Debounce,
		MaxScenes:  cfg.Wizard.MaxScenes,
		Assistants: factory,
		Logger:     logger,
	})

	var assistLimiter *rate.WindowLimiter
	if cfg.Assist.RateLimit > 0 {
		assistLimiter = rate.NewWindowLimiter(cfg.Assist.RateLimit, cfg.Assist.RateWindow)
	}

	secret := []byte(os.Getenv(cfg.Identity.SecretEnv))
	if len(secret) == 0 {
		logger.Warn("JWT secret not configured, trusting X-Subject-Id (development mode)",
			zap.String("secret_env", cfg.Identity.SecretEnv))
	}

	var metricsHandler http.Handler
	if cfg.Observability.Metrics.Enabled {
		metricsHandler = observability.Handler()
	}

	router := transport.NewRouter(transport.Dependencies{
		Config:       cfg,
		Authenticate: transport.JWTAuthenticator(cfg.Identity, secret),
		Wizard:       transport.NewWizardHandler(manager, assistLimiter, metrics),
		Health:       health,
		Metrics:      metricsHandler,
		HTTPMetrics: &transport.HTTPMetrics{
			Requests: metrics.HTTPRequestsTotal,
			Duration: metrics.HTTPRequestDuration,
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      observability.TracingMiddleware(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("draft_driver", cfg.Draft.Driver),
		zap.Bool("assist_enabled", factory != nil),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new connections and drain in-flight requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if draftsCloser != nil {
		draftsCloser()
	}

	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}

// buildDraftStore creates the draft store based on config and registers
// its readiness check.
func buildDraftStore(ctx context.Context, cfg config.DraftConfig, health *observability.HealthHandler, logger *zap.Logger) (draft.Store, func(), error) {
	switch cfg.Driver {
	case "memory", "":
		logger.Info("using in-memory draft store")
		return draft.NewMemoryStore(), nil, nil

	case "redis":
		addr := os.Getenv(cfg.AddrEnv)
		if addr == "" {
			return nil, nil, fmt.Errorf("draft store: %s environment variable not set", cfg.AddrEnv)
		}
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("draft store: ping redis: %w", err)
		}
		store := draft.NewRedisStore(client, cfg.TTL)
		health.Register("draft_store", store)
		return store, func() { client.Close() }, nil

	case "postgres":
		dsn := os.Getenv(cfg.DSNEnv)
		if dsn == "" {
			return nil, nil, fmt.Errorf("draft store: %s environment variable not set", cfg.DSNEnv)
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("draft store: parse DSN: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("draft store: ping postgres: %w", err)
		}
		store := draft.NewPgStore(pool)
		health.Register("draft_store", store)
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported draft store driver: %q", cfg.Driver)
	}
}

// buildAssistantFactory creates the per-session assistant factory based
// on config. Returns nil when assistance is disabled.
func buildAssistantFactory(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (wizard.AssistantFactory, error) {
	if !cfg.Assist.Enabled {
		return nil, nil
	}

	var generator assist.Generator
	switch cfg.Assist.Provider {
	case "gemini":
		g, err := assist.NewGeminiGenerator(ctx, cfg.Assist.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		generator = g
	case "static":
		logger.Info("using static suggestion generator")
		generator = &assist.StaticGenerator{}
	default:
		return nil, fmt.Errorf("unsupported assist provider: %q", cfg.Assist.Provider)
	}

	fetcher := scrape.NewFetcher(scrape.FetcherConfig{
		Timeout:      cfg.Scrape.Timeout,
		MaxBodyBytes: cfg.Scrape.MaxBodyBytes,
		RatePerHost:  cfg.Scrape.RatePerHost,
		RateBurst:    cfg.Scrape.RateBurst,
		Retries:      cfg.Scrape.Retries,
	}, logger, metrics)
	scraper := scrape.NewScraper(fetcher)

	merger := &assist.Merger{
		StartLead: cfg.Wizard.SuggestionStartLead,
		EndOffset: cfg.Wizard.SuggestionEndOffset,
		MaxScenes: cfg.Wizard.MaxScenes,
	}

	return func(store *wizard.Store) wizard.Assistant {
		return assist.New(assist.Options{
			Store:     store,
			Generator: generator,
			Scraper:   scraper,
			Merger:    merger,
			Timeout:   cfg.Assist.Timeout,
			Logger:    logger,
		})
	}, nil
}
