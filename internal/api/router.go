package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rpsarena/internal/api/handler"
	"github.com/mcoot/rpsarena/internal/api/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Leaderboard handler.LeaderboardReader
	Sessions    handler.StatsSource
	Bots        handler.BotSpawner

	// WebSocket serves the game protocol on /ws (optional)
	WebSocket http.Handler
	// Events streams match events on /api/v1/events (optional)
	Events http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Leaderboard)
	statsHandler := handler.NewStatsHandler(cfg.Sessions)
	botHandler := handler.NewBotHandler(cfg.Bots)

	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	api.HandleFunc("/stats", statsHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/leaderboard", leaderboardHandler.Top).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}", leaderboardHandler.Player).Methods(http.MethodGet)
	api.HandleFunc("/matches", leaderboardHandler.Matches).Methods(http.MethodGet)

	api.HandleFunc("/bots", botHandler.Spawn).Methods(http.MethodPost)

	if cfg.Events != nil {
		api.Handle("/events", cfg.Events).Methods(http.MethodGet)
	}
	if cfg.WebSocket != nil {
		r.Handle("/ws", cfg.WebSocket).Methods(http.MethodGet)
	}

	return r
}
