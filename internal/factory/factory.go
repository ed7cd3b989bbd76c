package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/leaderboard-go/internal/dependencies/clock"
	"github.com/mcoot/leaderboard-go/internal/dependencies/random"
	"github.com/mcoot/leaderboard-go/internal/services/call"
	"github.com/mcoot/leaderboard-go/internal/services/identity"
	"github.com/mcoot/leaderboard-go/internal/services/leaderboard"
	"github.com/mcoot/leaderboard-go/internal/services/score"
	"github.com/mcoot/leaderboard-go/internal/services/session"
	"github.com/mcoot/leaderboard-go/internal/storage"
	"github.com/mcoot/leaderboard-go/internal/storage/memory"
	redisstorage "github.com/mcoot/leaderboard-go/internal/storage/redis"
	sqlitestorage "github.com/mcoot/leaderboard-go/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	IdentityService    *identity.Service
	SessionService     *session.Service
	ScoreService       *score.Service
	LeaderboardService *leaderboard.Service

	// SessionDuration is the session lifetime the services were built with
	SessionDuration time.Duration
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// IdentityConfig, SessionConfig and CallPolicy fall back to their defaults
	// when left zero
	IdentityConfig identity.Config
	SessionConfig  session.Config
	CallPolicy     call.Policy
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg, logger), nil
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	policy := cfg.CallPolicy
	if policy.MaxTries == 0 {
		policy = call.DefaultPolicy()
	}

	idCfg := cfg.IdentityConfig
	if idCfg.Call.MaxTries == 0 {
		idCfg.Call = policy
	}
	sessCfg := cfg.SessionConfig
	if sessCfg.Call.MaxTries == 0 {
		sessCfg.Call = policy
	}
	if sessCfg.SessionDuration == 0 {
		sessCfg.SessionDuration = session.DefaultConfig().SessionDuration
	}

	identityService := identity.New(store, clk, idCfg, logger)
	sessionService := session.New(store, identityService, clk, rnd, sessCfg, logger)
	scoreService := score.New(store, clk, policy, logger)
	leaderboardService := leaderboard.New(store, policy, logger)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		IdentityService:    identityService,
		SessionService:     sessionService,
		ScoreService:       scoreService,
		LeaderboardService: leaderboardService,
		SessionDuration:    sessCfg.SessionDuration,
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
