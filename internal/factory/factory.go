package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/farkle-go/internal/dependencies/clock"
	"github.com/mcoot/farkle-go/internal/dependencies/random"
	"github.com/mcoot/farkle-go/internal/gateway"
	"github.com/mcoot/farkle-go/internal/notify"
	"github.com/mcoot/farkle-go/internal/services/game"
	"github.com/mcoot/farkle-go/internal/services/scoring"
	"github.com/mcoot/farkle-go/internal/storage"
	"github.com/mcoot/farkle-go/internal/storage/memory"
	redisstorage "github.com/mcoot/farkle-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// defaultWriteTimeout bounds a single outbound websocket write
const defaultWriteTimeout = 3 * time.Second

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	ScoringService *scoring.Service
	GameController *game.Controller
	Registry       *gateway.Registry
	Dispatcher     *notify.Dispatcher
	Gateway        *gateway.Gateway
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	registry := gateway.NewRegistry(defaultWriteTimeout)
	dispatcher := notify.NewDispatcher(registry, logger)
	scoringService := scoring.New()
	gameController := game.NewController(store, scoringService, dispatcher, clk, rnd, logger)
	gw := gateway.New(registry, dispatcher, gameController, store, clk, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		ScoringService: scoringService,
		GameController: gameController,
		Registry:       registry,
		Dispatcher:     dispatcher,
		Gateway:        gw,
	}
}
