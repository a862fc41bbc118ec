package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"emi-calculator/config"
	httpLayer "emi-calculator/http"
	"emi-calculator/repository"
	"emi-calculator/service"
)

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

func newHistoryRepository(cfg *config.Config) (repository.LoanRepository, error) {
	if cfg.HistoryBackend == config.HistorySQLite {
		return repository.NewLoanRepositorySQLite(cfg.SQLiteDBPath)
	}
	return repository.NewLoanRepositoryMemory(), nil
}

func newCache(ctx context.Context, cfg *config.Config, logger *logrus.Logger) repository.CacheRepository {
	if cfg.RedisAddr == "" {
		return repository.NewMemoryCache()
	}
	cache, err := repository.NewRedisCache(ctx, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, falling back to in-memory cache")
		return repository.NewMemoryCache()
	}
	return cache
}

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Money goes out as JSON numbers for the chart and table widgets.
	decimal.MarshalJSONWithoutQuotes = true

	loanRepo, err := newHistoryRepository(cfg)
	if err != nil {
		logger.Fatalf("Failed to open history store: %v", err)
	}
	defer loanRepo.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 5*time.Second)
	cache := newCache(startupCtx, cfg, logger)
	cancelStartup()
	if closer, ok := cache.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	loanService := service.NewLoanService(loanRepo, cache, logger)
	loanHandler := httpLayer.NewLoanHandler(loanService, logger)

	tenureService := service.NewTenureComparisonService(logger)
	tenureHandler := httpLayer.NewTenureComparisonHandler(tenureService, logger)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimitCapacity, cfg.RateLimitWindow)
	defer rateLimiter.Stop()

	router := httpLayer.NewRouter(loanHandler, tenureHandler, rateLimiter, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    server.Addr,
			"history": cfg.HistoryBackend,
			"redis":   cfg.RedisAddr != "",
		}).Info("EMI calculator listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.WithError(err).Error("Error starting server")
		return
	case <-quit:
		logger.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Error during server shutdown")
	}

	logger.Info("Server exited")
}
