package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory/internal/cache"
	"inventory/internal/config"
	"inventory/internal/repositories"
	"inventory/internal/server"
	"inventory/internal/services"
	"inventory/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "inventory").Logger()

	// --- Configuration ---
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg.App.LogLevel)

	ctx := context.Background()

	// --- Storage ---
	st, err := openStorage(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open storage")
	}
	defer st.close()
	checks := map[string]server.HealthCheck{"database": st.check}

	// --- Services ---
	var products repositories.ProductRepository = st.store.Repos().Products
	var invalidator services.ProductCacheInvalidator
	if cfg.Redis.URL != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		cached := cache.NewCachedProductRepository(products, rdb, cfg.Redis.TTL)
		products, invalidator = cached, cached
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Dur("ttl", cfg.Redis.TTL).Msg("product cache enabled")
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		if err := mqClient.ConsumeOrderEvents(rabbitmq.HandleOrderMessage); err != nil {
			log.Error().Err(err).Msg("failed to start RabbitMQ consumer")
		}
		publisher = mqClient
		checks["rabbitmq"] = func(context.Context) error { return mqClient.Healthy() }
	} else {
		log.Info().Msg("RABBITMQ_URL not set, order events disabled")
	}

	authService := services.NewAuthService(st.store.Users(), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err := authService.EnsureUser(ctx, cfg.Auth.AdminUser, cfg.Auth.AdminPass, cfg.Auth.AdminDisplay); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}

	app := server.New(server.Services{
		Auth:      authService,
		Products:  services.NewProductService(st.store, products, invalidator),
		Customers: services.NewCustomerService(st.store),
		Orders:    services.NewOrderService(st.store, publisher, invalidator),
	}, server.Options{
		RequestLog: true,
		Checks:     checks,
	})

	// --- Start HTTP Server ---
	go func() {
		log.Info().Str("addr", cfg.App.Port).Msg("starting HTTP server")
		if err := app.Listen(cfg.App.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// storage is an opened Store with its health check and closer.
type storage struct {
	store repositories.Store
	check server.HealthCheck
	close func()
}

func openStorage(driver, dsn string) (*storage, error) {
	if driver == config.DriverMemory {
		log.Warn().Msg("using in-memory storage, data is lost on exit")
		return &storage{
			store: repositories.NewMemoryStore(),
			check: func(context.Context) error { return nil },
			close: func() {},
		}, nil
	}

	var dialector gorm.Dialector
	switch driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if driver == config.DriverSQLite {
		// SQLite allows one writer; a single connection turns lock contention into queueing.
		sqlDB.SetMaxOpenConns(1)
	}

	store := repositories.NewGORMStore(db)
	if err := store.Migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.Info().Str("driver", driver).Msg("database connected and migrated")

	return &storage{
		store: store,
		check: func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
		close: func() {
			if err := sqlDB.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
			}
		},
	}, nil
}
