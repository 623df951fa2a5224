package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mcoot/rpsarena/internal/api/apierr"
	"github.com/mcoot/rpsarena/internal/api/request"
	"github.com/mcoot/rpsarena/internal/api/response"
	"github.com/mcoot/rpsarena/internal/services/bot"
)

// BotSpawner starts house bots
type BotSpawner interface {
	Spawn(ctx context.Context, strategy string) (*bot.Player, error)
}

// BotHandler handles house bot endpoints
type BotHandler struct {
	bots BotSpawner
}

// NewBotHandler creates a new bot handler
func NewBotHandler(bots BotSpawner) *BotHandler {
	return &BotHandler{bots: bots}
}

// Spawn handles POST /api/v1/bots
func (h *BotHandler) Spawn(w http.ResponseWriter, r *http.Request) {
	var req request.SpawnBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Strategy == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("strategy is required"))
		return
	}

	p, err := h.bots.Spawn(r.Context(), req.Strategy)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Bot{
		PeerID:   string(p.ID()),
		Name:     p.Name(),
		Strategy: req.Strategy,
	})
}
