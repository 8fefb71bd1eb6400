// Package main is the entry point for the Doce Delícia storefront server.
// The server exposes the shop API: catalog, accounts, carts, checkout and
// the order management dashboard endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	memcache "github.com/docedelicia/storefront/internal/cache/memory"
	rediscache "github.com/docedelicia/storefront/internal/cache/redis"

	"github.com/docedelicia/storefront/internal/auth"
	"github.com/docedelicia/storefront/internal/config"
	"github.com/docedelicia/storefront/internal/handler"
	"github.com/docedelicia/storefront/internal/lock"
	"github.com/docedelicia/storefront/internal/metrics"
	"github.com/docedelicia/storefront/internal/repository"
	"github.com/docedelicia/storefront/internal/repository/postgres"
	"github.com/docedelicia/storefront/internal/repository/sqlite"
	"github.com/docedelicia/storefront/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Doce Delícia storefront server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Durable store. Users, sessions and carts always live in the
	// embedded SQLite file; the order history can be pointed at
	// PostgreSQL instead.
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return err
	}
	db, err := sqlite.NewDB(ctx, sqlite.Config{
		Path:            cfg.Database.Path,
		JournalMode:     cfg.Database.JournalMode,
		BusyTimeout:     cfg.Database.BusyTimeout,
		CacheSize:       cfg.Database.CacheSize,
		SynchronousMode: cfg.Database.SynchronousMode,
	}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	repos := repository.Repositories{
		User:    sqlite.NewUserRepository(db),
		Session: sqlite.NewSessionRepository(db),
		Cart:    sqlite.NewCartRepository(db),
		Order:   sqlite.NewOrderRepository(db),
	}

	if cfg.Database.Driver == "postgres" {
		pgdb, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pgdb.Close()
		repos.Order = postgres.NewOrderRepository(pgdb)
		logger.Info().Msg("order history backed by PostgreSQL")
	}

	// Cache and locking. In-memory for a single instance, Redis when
	// several instances share state.
	var cache repository.Cache
	var locker lock.Locker
	if cfg.Redis.Enabled {
		redisCache, err := rediscache.NewCache(ctx, rediscache.Config{
			Addr:        cfg.Redis.Addr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return err
		}
		defer redisCache.Close()
		cache = redisCache
		locker = lock.NewRedisLocker(rediscache.NewLock(redisCache.Client()))
		logger.Info().Str("addr", cfg.Redis.Addr()).Msg("redis connected")
	} else {
		mc := memcache.NewCache()
		defer mc.Stop()
		cache = mc
		locker = lock.NewMemoryLocker()
	}

	checkoutLocker := locker
	if !cfg.Orders.CheckoutLockEnabled {
		checkoutLocker = lock.NewNoopLocker()
	}

	m := metrics.New()

	// Services.
	identitySvc := service.NewIdentityService(repos.User, repos.Session, cache, service.IdentityConfig{
		SessionTTL:    cfg.Auth.SessionTTL,
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
		AdminName:     cfg.Auth.AdminName,
		AdminEmail:    cfg.Auth.AdminEmail,
		AdminPassword: cfg.Auth.AdminPassword,
	}, logger)
	catalogSvc := service.NewCatalogService(service.CatalogConfig{
		LoadDelay: cfg.Catalog.LoadDelay,
	}, logger)
	cartSvc := service.NewCartService(repos.Cart, catalogSvc, m, logger)
	orderSvc := service.NewOrderService(repos.Order, repos.Cart, checkoutLocker, service.OrderConfig{
		EnforceTransitions: cfg.Orders.EnforceTransitions,
		CheckoutLockTTL:    cfg.Orders.CheckoutLockTTL,
	}, m, logger)

	if err := identitySvc.EnsureAdmin(ctx); err != nil {
		return err
	}
	if err := catalogSvc.Load(ctx); err != nil {
		return err
	}

	janitor := service.NewSessionJanitor(repos.Session, locker, service.JanitorConfig{
		Interval: time.Hour,
		LockTTL:  time.Minute,
	}, logger)
	janitor.Start(ctx)
	defer janitor.Stop()

	// HTTP API.
	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(identitySvc, m, logger),
		CatalogHandler: handler.NewCatalogHandler(catalogSvc, logger),
		CartHandler:    handler.NewCartHandler(cartSvc, logger),
		OrderHandler:   handler.NewOrderHandler(orderSvc, logger),
		AdminHandler:   handler.NewAdminHandler(orderSvc, identitySvc, logger),
		AuthMiddleware: auth.Middleware(identitySvc, logger),
		Metrics:        m,
		DBHealth:       db,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(m, cfg.Metrics.Port, cfg.Metrics.Path, logger)
		go metricsSrv.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("storefront server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}

	return nil
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	logger := log.Logger
	if cfg.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat})
	}
	return logger.Level(level)
}
