package network

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/rpsarena/internal/protocol"
	"github.com/mcoot/rpsarena/internal/session"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

// WebSocketHandler serves the game protocol over websocket text frames,
// one JSON message per frame
type WebSocketHandler struct {
	coord      *session.Coordinator
	logger     *slog.Logger
	bufferSize int
	upgrader   websocket.Upgrader
}

// NewWebSocketHandler creates a websocket endpoint backed by coord
func NewWebSocketHandler(coord *session.Coordinator, cfg Config, logger *slog.Logger) *WebSocketHandler {
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = DefaultConfig().SendBufferSize
	}
	return &WebSocketHandler{
		coord:      coord,
		logger:     logger.With(slog.String("component", "websocket")),
		bufferSize: cfg.SendBufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		h.logger.Info("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	ctx := r.Context()
	peer := newConn(r.RemoteAddr, h.bufferSize)

	go peer.writeLoop(
		func(msg protocol.Message) error {
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			return ws.WriteJSON(msg)
		},
		func() error {
			return ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		},
		pingPeriod,
		h.logger,
	)
	go func() {
		<-peer.Done()
		_ = ws.Close()
	}()

	h.coord.Connect(peer)
	defer func() {
		peer.Close()
		h.coord.Disconnect(ctx, peer)
	}()

	ws.SetReadLimit(protocol.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket closed unexpectedly",
					slog.String("peer_id", string(peer.ID())),
					slog.String("error", err.Error()))
			}
			return
		}
		if kind != websocket.TextMessage {
			h.coord.Reject(peer, errors.New("binary frames are not supported"))
			continue
		}
		msg, err := protocol.Decode(bytes.TrimSpace(data))
		if err != nil {
			h.coord.Reject(peer, err)
			continue
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		h.coord.HandleMessage(ctx, peer, msg)
	}
}
