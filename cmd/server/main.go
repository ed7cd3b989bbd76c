package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/leaderboard-go/internal/api"
	"github.com/mcoot/leaderboard-go/internal/config"
	"github.com/mcoot/leaderboard-go/internal/factory"
	"github.com/mcoot/leaderboard-go/internal/services/call"
	"github.com/mcoot/leaderboard-go/internal/services/identity"
	"github.com/mcoot/leaderboard-go/internal/services/session"
	redisstorage "github.com/mcoot/leaderboard-go/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	policy := call.DefaultPolicy()
	policy.Timeout = cfg.StoreTimeout
	policy.MaxTries = cfg.StoreRetries
	policy.Budget = cfg.StoreBudget

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		SQLitePath:  cfg.SQLitePath,
		IdentityConfig: identity.Config{
			Domain:     cfg.IdentityDomain,
			BcryptCost: cfg.BcryptCost,
		},
		SessionConfig: session.Config{SessionDuration: cfg.SessionTTL},
		CallPolicy:    policy,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.SessionTTL = cfg.SessionTTL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		SessionService:     app.SessionService,
		ScoreService:       app.ScoreService,
		LeaderboardService: app.LeaderboardService,
		SessionDuration:    app.SessionDuration,
		SecureCookies:      cfg.SecureCookies,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.ListenHost
	serverConfig.Port = cfg.ListenPort
	serverConfig.RequestTimeout = cfg.RequestTimeout
	// Leave headroom after the request deadline to write the 503
	serverConfig.WriteTimeout = cfg.RequestTimeout + 5*time.Second
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	logger.Info("server configured",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	return g.Wait()
}
