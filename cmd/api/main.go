// The api command runs the StackSkills platform backend.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/stackskills/platform/account"
	"github.com/stackskills/platform/auth/password"
	"github.com/stackskills/platform/auth/ratelimit"
	"github.com/stackskills/platform/auth/token"
	"github.com/stackskills/platform/config"
	"github.com/stackskills/platform/course"
	"github.com/stackskills/platform/database"
	"github.com/stackskills/platform/email"
	"github.com/stackskills/platform/logger"
	"github.com/stackskills/platform/observability"
	"github.com/stackskills/platform/redis"
	"github.com/stackskills/platform/server"
	"github.com/stackskills/platform/server/endpoint"
)

var errEmailRequired = errors.New("email api_key is required in production")

func main() {
	if err := run(); err != nil {
		logger.Fatal("Service failed", logger.Fields("error", err.Error()))
	}
}

func run() error {
	var cfg AppConfig
	if err := config.LoadConfig("api", &cfg); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info("Starting service", logger.Fields(
		"name", cfg.Name,
		"environment", cfg.Environment,
		"version", cfg.Version,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Observability (optional).
	var authMetrics *observability.AuthMetrics
	if cfg.Observability.Enabled {
		mp, err := observability.InitMeter(ctx, observability.MeterConfig{
			ServiceName:    cfg.Name,
			ServiceVersion: cfg.Version,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Observability.Endpoint,
			Insecure:       cfg.Observability.Insecure,
		})
		if err != nil {
			return err
		}
		defer func() { _ = mp.Shutdown(context.Background()) }()

		tp, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName:    cfg.Name,
			ServiceVersion: cfg.Version,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Observability.Endpoint,
			Insecure:       cfg.Observability.Insecure,
			SampleRate:     1.0,
		})
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()

		authMetrics, err = observability.NewAuthMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return err
		}
	}

	// Token blacklist: Redis when configured, in-memory otherwise.
	var blacklist token.Blacklist
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(cfg.Redis, log)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx); err != nil {
			return err
		}
		blacklist = token.NewRedisBlacklist(redisClient, cfg.Redis.Namespace)
	} else {
		memBlacklist := token.NewMemoryBlacklist(0)
		defer memBlacklist.Close()
		blacklist = memBlacklist
	}

	tokens, err := token.NewService(cfg.Token, blacklist)
	if err != nil {
		return err
	}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return err
	}

	limiter := ratelimit.New(cfg.RateLimit)
	defer limiter.Close()

	// Stores: PostgreSQL when configured, in-memory otherwise.
	var accountStore account.Store
	var courseStore course.Store
	if cfg.Database.Enabled {
		db, err := database.New(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()
		accountStore = account.NewPostgresStore(db.Pool)
		courseStore = course.NewPostgresStore(db.Pool)
	} else {
		log.Warn("Database disabled, using in-memory stores")
		accountStore = account.NewMemoryStore()
		courseStore = course.NewMemoryStore()
	}

	// Email: SendGrid when a key is configured; log-only in development.
	var mailer email.Sender
	if cfg.Email.APIKey != "" {
		mailer, err = email.NewSendGridSender(cfg.Email, log)
		if err != nil {
			return err
		}
	} else {
		if cfg.IsProduction() {
			return errEmailRequired
		}
		mailer = email.NewLogSender(log)
	}

	accounts, err := account.NewService(cfg.Account, accountStore, hasher, tokens,
		limiter, mailer, authMetrics, log)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	endpoint.RegisterHealth(srv.Engine(), cfg.Name, cfg.Version)
	account.NewHandler(accounts, tokens, limiter, authMetrics, cfg.IsProduction()).RegisterRoutes(srv.Engine())
	course.NewHandler(courseStore, tokens, authMetrics, log).RegisterRoutes(srv.Engine())

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")
	return srv.Stop(context.Background())
}
