package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/rpsarena/internal/dependencies/clock"
	"github.com/mcoot/rpsarena/internal/dependencies/random"
	"github.com/mcoot/rpsarena/internal/events"
	"github.com/mcoot/rpsarena/internal/services/bot"
	"github.com/mcoot/rpsarena/internal/services/leaderboard"
	"github.com/mcoot/rpsarena/internal/services/scoring"
	"github.com/mcoot/rpsarena/internal/session"
	"github.com/mcoot/rpsarena/internal/storage"
	"github.com/mcoot/rpsarena/internal/storage/memory"
	redisstorage "github.com/mcoot/rpsarena/internal/storage/redis"
	sqlitestorage "github.com/mcoot/rpsarena/internal/storage/sqlite"
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
	ScoringService *scoring.Service
	Leaderboard    *leaderboard.Service
	BotService     *bot.Service

	// Session core
	Sessions    *session.Store
	Coordinator *session.Coordinator

	// Event fan-out: the live SSE hub plus NATS when configured
	EventHub  *events.Hub
	Publisher events.Publisher

	nats *events.NATSPublisher
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Session holds match rules (optional)
	// If nil, defaults to session.DefaultConfig()
	Session *session.Config
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// NATSConfig enables publishing match events to NATS (optional)
	NATSConfig *events.NATSConfig
	// Bots holds house bot pacing (optional)
	// If nil, defaults to bot.DefaultConfig()
	Bots *bot.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	sessionCfg := session.DefaultConfig()
	if cfg.Session != nil {
		sessionCfg = *cfg.Session
	}

	botCfg := bot.DefaultConfig()
	if cfg.Bots != nil {
		botCfg = *cfg.Bots
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	var publishers []events.Publisher
	var natsPub *events.NATSPublisher
	if cfg.NATSConfig != nil {
		natsPub, err = events.NewNATSPublisher(*cfg.NATSConfig, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		publishers = append(publishers, natsPub)
	}

	app := newWithDependencies(store, clock.New(), random.New(), sessionCfg, botCfg, publishers, logger)
	app.nats = natsPub
	return app, nil
}

// newStorage creates the configured storage backend
func newStorage(cfg Config) (storage.Storage, error) {
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
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlitestorage.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	sessionCfg session.Config,
	botCfg bot.Config,
	publishers []events.Publisher,
	logger *slog.Logger,
) *App {
	hub := events.NewHub(logger)
	go hub.Run()
	publisher := events.Multi(append([]events.Publisher{hub}, publishers...))

	scoringService := scoring.New()
	board := leaderboard.New(store, leaderboard.DefaultConfig(), logger)
	sessions := session.NewStore(sessionCfg, scoringService, clk, logger)
	coordinator := session.NewCoordinator(sessions, board, publisher, clk, logger)
	botService := bot.NewService(coordinator, clk, rnd, botCfg, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		ScoringService: scoringService,
		Leaderboard:    board,
		BotService:     botService,
		Sessions:       sessions,
		Coordinator:    coordinator,
		EventHub:       hub,
		Publisher:      publisher,
	}
}

// Close stops bots and the event hub, then releases external connections
func (a *App) Close() error {
	a.BotService.Close()
	a.EventHub.Close()

	var errs []error
	if a.nats != nil {
		errs = append(errs, a.nats.Close())
	}
	errs = append(errs, a.Storage.Close())
	return errors.Join(errs...)
}
