package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rpsarena/internal/api/apierr"
	"github.com/mcoot/rpsarena/internal/api/request"
	"github.com/mcoot/rpsarena/internal/api/response"
	"github.com/mcoot/rpsarena/internal/model"
)

// LeaderboardReader is the read side of the leaderboard service
type LeaderboardReader interface {
	Top(ctx context.Context, limit int) ([]model.Standing, error)
	Standing(ctx context.Context, name string) (*model.Standing, error)
	RecentMatches(ctx context.Context, limit int) ([]*model.MatchRecord, error)
}

// LeaderboardHandler handles standings and match history endpoints
type LeaderboardHandler struct {
	leaderboard LeaderboardReader
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboard LeaderboardReader) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
	}
}

// Top handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := request.Limit(r)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	standings, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(standings))
}

// Player handles GET /api/v1/players/{name}
func (h *LeaderboardHandler) Player(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	standing, err := h.leaderboard.Standing(r.Context(), name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StandingFromModel(*standing, 0))
}

// Matches handles GET /api/v1/matches
func (h *LeaderboardHandler) Matches(w http.ResponseWriter, r *http.Request) {
	limit, err := request.Limit(r)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	matches, err := h.leaderboard.RecentMatches(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchesFromModel(matches))
}
