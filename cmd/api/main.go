package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"price-resolution-api/internal/cache"
	"price-resolution-api/internal/config"
	"price-resolution-api/internal/database"
	"price-resolution-api/internal/events"
	"price-resolution-api/internal/features"
	"price-resolution-api/internal/handler"
	"price-resolution-api/internal/logging"
	"price-resolution-api/internal/middleware"
	"price-resolution-api/internal/pricing"
	"price-resolution-api/internal/service"
	"price-resolution-api/internal/tracing"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "Path to JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logging.Fatal(slog.Default(), "failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal(slog.Default(), "invalid configuration", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logging.Fatal(logger, "server failed", err)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, err := tracing.InitTracing(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
		Version:     version,
	})
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(logger, "tracer", tracer.Shutdown)

	db, err := database.Open(ctx, database.Config{
		Driver:  cfg.Database.Driver,
		DSN:     cfg.Database.DSN,
		Migrate: cfg.Database.Migrate,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.Seed {
		n, err := db.SeedSamplePrices(ctx)
		if err != nil {
			return err
		}
		logger.Info("seeded sample prices", "windows", n)
	}

	flags := features.Defaults(cfg.Cache.Enabled, cfg.Events.Enabled)

	var store pricing.Store = db
	if flags.IsEnabled(features.FeatureCacheEnabled) {
		c, closeCache, err := newCache(ctx, cfg.Cache, logger)
		if err != nil {
			return err
		}
		defer closeCache()
		store = cache.NewStore(db, c, cfg.Cache.TTLDuration(), logger)
	}

	eventManager := events.NewManager(flags.IsEnabled(features.FeatureEventHooksEnabled), logger)
	defer eventManager.Shutdown()

	if brokers := cfg.Events.Brokers(); eventManager.Enabled() && len(brokers) > 0 {
		producer := events.NewProducer(brokers, cfg.Events.KafkaTopic)
		producer.Attach(eventManager)
		defer producer.Close()
		logger.Info("publishing resolution events", "brokers", brokers, "topic", cfg.Events.KafkaTopic)
	}

	svc := service.NewService(store,
		service.WithEvents(eventManager),
		service.WithTracer(tracer),
		service.WithLogger(logger),
	)

	h := handler.NewHandlerWithOptions(svc, handler.NewHandlerOptions{
		Pinger:   db,
		Features: flags,
		Logger:   logger,
	})

	routerOpts := handler.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.Security.Origins(),
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, time.Duration(cfg.RateLimit.Window)*time.Second)
		defer limiter.Stop()
		routerOpts.RateLimiter = limiter
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.NewRouter(h, routerOpts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", server.Addr,
			"tls", cfg.Server.EnableTLS,
			"driver", cfg.Database.Driver,
			"cache", flags.IsEnabled(features.FeatureCacheEnabled),
			"events", eventManager.Enabled(),
			"version", version,
		)

		var err error
		if cfg.Server.EnableTLS {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down server", "error", err)
	}
	return nil
}

// newCache returns a Redis cache when an address is configured and the
// in-process cache otherwise.
func newCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (cache.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory price cache", "ttl", cfg.TTLDuration())
		return cache.NewInMemoryCache(), func() {}, nil
	}

	rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis price cache", "addr", cfg.RedisAddr, "ttl", cfg.TTLDuration())
	return rc, func() { rc.Close() }, nil
}

func shutdownWithTimeout(logger *slog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := fn(ctx); err != nil {
		logger.Warn("shutdown failed", "component", name, "error", err)
	}
}
