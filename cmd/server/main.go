package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/rpsarena/internal/api"
	"github.com/mcoot/rpsarena/internal/events"
	"github.com/mcoot/rpsarena/internal/factory"
	"github.com/mcoot/rpsarena/internal/network"
	"github.com/mcoot/rpsarena/internal/services/bot"
	"github.com/mcoot/rpsarena/internal/session"
	redisstorage "github.com/mcoot/rpsarena/internal/storage/redis"
)

// adminDisabled turns off the admin HTTP server when set as ADMIN_ADDR
const adminDisabled = "off"

type config struct {
	app   factory.Config
	game  network.Config
	admin string
}

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not read .env", slog.String("error", err.Error()))
	}

	cfg, err := loadConfig(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or a listener fails. The App is closed
// on every return path.
func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	app, err := factory.New(cfg.app)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close error", slog.String("error", err.Error()))
		}
	}()

	gameServer := network.NewServer(cfg.game, app.Coordinator, logger)
	if err := gameServer.Listen(); err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	// Established game connections are not drained
	defer func() { _ = gameServer.Close() }()

	var adminServer *api.Server
	if cfg.admin != adminDisabled {
		router := api.NewRouter(api.RouterConfig{
			Logger:      logger,
			Leaderboard: app.Leaderboard,
			Sessions:    app.Sessions,
			Bots:        app.BotService,
			WebSocket:   network.NewWebSocketHandler(app.Coordinator, cfg.game, logger),
			Events:      app.EventHub,
		})

		serverConfig := api.DefaultServerConfig()
		serverConfig.Addr = cfg.admin
		adminServer = api.NewServer(router, serverConfig, logger)
		if err := adminServer.Listen(); err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- gameServer.Serve(ctx)
	}()
	if adminServer != nil {
		go func() {
			if err := adminServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	logger.Info("server started",
		slog.String("game_addr", gameServer.Addr().String()),
		slog.String("admin_addr", cfg.admin),
		slog.Int("rounds_to_win", app.Sessions.RoundsToWin()),
		slog.String("storage", cfg.app.StorageType))

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	_ = gameServer.Close()
	// Ends open event streams so Shutdown does not wait on them
	app.EventHub.Close()
	if adminServer != nil {
		if err := adminServer.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
	return runErr
}

// loadConfig builds the server configuration from the environment
func loadConfig(logger *slog.Logger) (config, error) {
	game := network.DefaultConfig()
	if host := os.Getenv("RPS_HOST"); host != "" {
		game.Host = host
	}
	if raw := os.Getenv("RPS_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 0 || port > 65535 {
			return config{}, fmt.Errorf("RPS_PORT must be a port number, got %q", raw)
		}
		game.Port = port
	}

	sessionCfg := session.DefaultConfig()
	if raw := os.Getenv("ROUNDS_TO_WIN"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return config{}, fmt.Errorf("ROUNDS_TO_WIN must be a non-negative integer, got %q", raw)
		}
		sessionCfg.RoundsToWin = n
	}

	botCfg := bot.DefaultConfig()
	if raw := os.Getenv("BOT_MOVE_DELAY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return config{}, fmt.Errorf("BOT_MOVE_DELAY must be a non-negative duration, got %q", raw)
		}
		botCfg.MoveDelay = d
	}
	if raw := os.Getenv("BOT_MAX_ROUNDS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return config{}, fmt.Errorf("BOT_MAX_ROUNDS must be a non-negative integer, got %q", raw)
		}
		botCfg.MaxRounds = n
	}

	appCfg := factory.Config{
		Logger:      logger,
		Session:     &sessionCfg,
		StorageType: os.Getenv("STORAGE_TYPE"),
		Bots:        &botCfg,
	}
	if appCfg.StorageType == "" {
		appCfg.StorageType = factory.StorageTypeMemory
	}

	switch appCfg.StorageType {
	case factory.StorageTypeRedis:
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return config{}, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		appCfg.RedisConfig = &redisCfg
	case factory.StorageTypeSQLite:
		appCfg.SQLitePath = getEnvOrDefault("SQLITE_PATH", "leaderboard.db")
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		natsCfg := events.DefaultNATSConfig()
		natsCfg.URL = natsURL
		appCfg.NATSConfig = &natsCfg
	}

	return config{
		app:   appCfg,
		game:  game,
		admin: getEnvOrDefault("ADMIN_ADDR", api.DefaultServerConfig().Addr),
	}, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
