package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moviehub/internal/core/ports"
	"moviehub/internal/core/services"
	httphandlers "moviehub/internal/handlers/http"
	"moviehub/internal/infrastructure/middleware"
	"moviehub/internal/infrastructure/monitoring"
	"moviehub/internal/infrastructure/repositories"
	"moviehub/internal/infrastructure/tmdb"
	"moviehub/pkg/circuitbreaker"
	"moviehub/pkg/config"
	"moviehub/pkg/crypto"
	"moviehub/pkg/logger"
	"moviehub/pkg/retry"
	"moviehub/pkg/tracing"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var configPaths = []string{
	"configs/config.yaml",
	"/etc/moviehub/config.yaml",
	"config.yaml",
}

func main() {
	startTime := time.Now()

	// Secrets such as TMDB_API_KEY usually come from .env in development.
	_ = godotenv.Load()

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		// logger is not configured yet
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()
	if cfgPath != "" {
		log.Infow("configuration loaded", "path", cfgPath)
	} else {
		log.Info("no configuration file found, using defaults")
	}
	if cfg.Catalog.APIKey == "" {
		log.Warn("TMDB_API_KEY is not set; catalog requests will fail")
	}

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "moviehub",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: envOr("MOVIEHUB_ENV", "development"),
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	collector := monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)

	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}

	hasher := crypto.NewArgon2(cfg.Password.MemoryKiB, cfg.Password.Iterations, cfg.Password.Parallelism)
	accountService := services.NewAccountService(repoFactory.CreateUserRepository(), hasher, log)

	tmdbClient := tmdb.NewClient(tmdbConfig(cfg), collector, log)

	var provider ports.CatalogProvider = tmdbClient
	if cfg.Catalog.CacheTTL > 0 {
		cached := services.NewCachedCatalogProvider(tmdbClient, cfg.Catalog.CacheTTL, collector)
		defer cached.Stop()
		provider = cached
		log.Infow("catalog response cache enabled", "ttl", cfg.Catalog.CacheTTL)
	}
	catalogService := services.NewCatalogService(cfg.Catalog.APIKey, provider, log)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.CORSMiddleware(cfg.CORS.AllowedOrigins),
		middleware.RecoveryMiddleware(log),
		middleware.RequestLoggerMiddleware(zapLogger),
		middleware.TracingMiddleware(),
		middleware.MetricsMiddleware(collector),
		middleware.NewHTTPRateLimitMiddleware(cfg),
		middleware.ErrorHandlerMiddleware(log),
	)
	if cfg.Server.Gzip {
		router.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	httphandlers.NewAccountHandler(accountService, collector).SetupRoutes(router)
	httphandlers.NewCatalogHandler(catalogService, collector).SetupRoutes(router)

	health := monitoring.NewHealthChecker()
	health.AddCheck("storage_"+repoFactory.Backend(), repoFactory.HealthCheck, 2*time.Second)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		status := health.CheckAll(c.Request.Context())
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":       status.Status,
			"timestamp":    status.Timestamp,
			"dependencies": status.Checks,
			"tmdb_circuit": tmdbClient.CircuitState(),
		})
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("starting MovieHub server",
			"address", cfg.Server.Address,
			"storage", repoFactory.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("received shutdown signal", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	} else {
		log.Info("server shutdown gracefully")
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("error closing repository factory", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error shutting down tracer provider", "error", err)
	}

	log.Info("MovieHub server stopped")
}

// loadConfig uses MOVIEHUB_CONFIG when set, otherwise the first existing
// file from configPaths. Without any file the defaults apply.
func loadConfig() (*config.Config, string, error) {
	if path := os.Getenv("MOVIEHUB_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			cfg, err := config.Load(path)
			return cfg, path, err
		}
	}

	cfg, err := config.Load("")
	return cfg, "", err
}

func tmdbConfig(cfg *config.Config) tmdb.Config {
	c := tmdb.Config{
		APIKey:   cfg.Catalog.APIKey,
		BaseURL:  cfg.Catalog.BaseURL,
		Language: cfg.Catalog.Language,
		Timeout:  cfg.Catalog.RequestTimeout,
		Retry: retry.Config{
			Enabled:      cfg.Catalog.Retry.Enabled,
			MaxAttempts:  cfg.Catalog.Retry.MaxAttempts,
			InitialDelay: cfg.Catalog.Retry.InitialDelay,
			MaxDelay:     cfg.Catalog.Retry.MaxDelay,
			Multiplier:   2.0,
		},
	}

	if cfg.Catalog.CircuitBreaker.Enabled {
		c.Breaker = &circuitbreaker.Config{
			FailureThreshold:    cfg.Catalog.CircuitBreaker.FailureThreshold,
			SuccessThreshold:    cfg.Catalog.CircuitBreaker.SuccessThreshold,
			Timeout:             cfg.Catalog.CircuitBreaker.Timeout,
			MaxRequestsHalfOpen: 1,
		}
	}
	return c
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
