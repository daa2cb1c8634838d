package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"superstore-analytics/internal/config"
	"superstore-analytics/internal/format"
	"superstore-analytics/internal/middleware"
	"superstore-analytics/internal/observability"
	"superstore-analytics/internal/server"
	"superstore-analytics/internal/services"
	"superstore-analytics/internal/source"
)

const (
	limiterSweepInterval = time.Minute
	limiterIdleTimeout   = 5 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	formatter, err := cfg.Formatter()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"csv_file", cfg.Data.CSVFile,
		"database", cfg.Data.DatabaseURL != "",
		"locale", cfg.Reports.Locale,
	)

	src, closeSource, err := source.Open(ctx, cfg.Data, logger)
	if err != nil {
		return fmt.Errorf("open data source: %w", err)
	}
	defer closeSource()

	analytics := services.NewAnalytics(logger, cfg.EngineOptions()...)
	if err := load(ctx, analytics, src, cfg.Data.LoadTimeout); err != nil {
		return err
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, formatter, rateLimiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.Go(func(ctx context.Context) error {
		rateLimiter.Run(ctx, limiterSweepInterval, limiterIdleTimeout)
		return nil
	})
	gracefulServer.Go(func(ctx context.Context) error {
		return reloadOnHangup(ctx, analytics, src, cfg.Data.LoadTimeout, logger)
	})
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		return nil
	})

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Info("application stopped gracefully")
	return nil
}

func load(ctx context.Context, analytics *services.Analytics, src source.Source, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return analytics.Load(ctx, src)
}

// newHandler wraps the routes in the middleware stack. Recovery is
// outermost so a panic anywhere below still produces a JSON error.
func newHandler(cfg *config.Config, analytics *services.Analytics, formatter *format.Formatter, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	srv := server.NewServer(analytics, formatter, logger)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
	)
	return chain(srv)
}

// reloadOnHangup reloads the dataset on SIGHUP. A failed reload keeps the
// current data.
func reloadOnHangup(ctx context.Context, analytics *services.Analytics, src source.Source, timeout time.Duration, logger *slog.Logger) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	reloadLoop(ctx, hup, analytics, src, timeout, logger)
	return nil
}

func reloadLoop(ctx context.Context, trigger <-chan os.Signal, analytics *services.Analytics, src source.Source, timeout time.Duration, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-trigger:
			logger.Info("reload requested")
			if err := load(ctx, analytics, src, timeout); err != nil {
				logger.Error("reload failed, keeping previous data", "error", err)
			}
		}
	}
}
