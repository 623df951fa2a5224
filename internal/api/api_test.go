package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rpsarena/internal/api"
	"github.com/mcoot/rpsarena/internal/api/apierr"
	"github.com/mcoot/rpsarena/internal/api/response"
	"github.com/mcoot/rpsarena/internal/factory"
	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/network"
	"github.com/mcoot/rpsarena/internal/protocol"
	"github.com/mcoot/rpsarena/internal/session"
	"github.com/mcoot/rpsarena/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp(session.DefaultConfig())
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Leaderboard: app.Leaderboard,
		Sessions:    app.Sessions,
		Bots:        app.BotService,
		WebSocket:   network.NewWebSocketHandler(app.Coordinator, network.DefaultConfig(), testutil.NopLogger()),
		Events:      app.EventHub,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "ok", decode[response.Health](t, rr).Status)
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.app.Leaderboard.RecordResult(ctx, "Alice", "Bob"))
	require.NoError(t, ts.app.Leaderboard.RecordResult(ctx, "Alice", "Carol"))
	require.NoError(t, ts.app.Leaderboard.RecordResult(ctx, "Bob", "Carol"))

	rr := ts.request(http.MethodGet, "/api/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	board := decode[response.Leaderboard](t, rr)
	require.Len(t, board.Standings, 3)
	assert.Equal(t, response.Standing{Rank: 1, Name: "Alice", Wins: 2, Losses: 0, Played: 2}, board.Standings[0])
	assert.Equal(t, "Bob", board.Standings[1].Name)
	assert.Equal(t, "Carol", board.Standings[2].Name)

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[response.Leaderboard](t, rr).Standings, 1)
}

func TestLeaderboardEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"standings":[]}`, rr.Body.String())
}

func TestInvalidLimit(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/leaderboard?limit=abc", "/api/v1/matches?limit=-2"} {
		rr := ts.request(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.Equal(t, apierr.CodeInvalidRequest, decode[apierr.ErrorResponse](t, rr).Error.Code)
	}
}

func TestPlayerStanding(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.app.Leaderboard.RecordResult(context.Background(), "Alice", "Bob"))

	rr := ts.request(http.MethodGet, "/api/v1/players/Bob", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, response.Standing{Name: "Bob", Wins: 0, Losses: 1, Played: 1}, decode[response.Standing](t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/players/Nobody", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestMatches(t *testing.T) {
	ts := newTestServer(t)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, ts.app.Leaderboard.RecordMatch(context.Background(), &model.MatchRecord{
		ID:        "m1",
		Players:   [2]string{"Alice", "Bob"},
		Scores:    [2]int{3, 1},
		Rounds:    4,
		Winner:    "Alice",
		EndReason: model.EndReasonCompleted,
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
	}))

	rr := ts.request(http.MethodGet, "/api/v1/matches", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	matches := decode[response.Matches](t, rr).Matches
	require.Len(t, matches, 1)
	assert.Equal(t, "m1", matches[0].ID)
	assert.Equal(t, "Alice", matches[0].Winner)
	assert.Equal(t, "completed", matches[0].EndReason)
	assert.Equal(t, int64(90000), matches[0].DurationMs)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, response.Stats{RoundsToWin: 3}, decode[response.Stats](t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/bots", map[string]string{"strategy": "cycle"})
	require.Equal(t, http.StatusCreated, rr.Code)

	require.Eventually(t, func() bool { return ts.app.Sessions.Stats().Queued == 1 }, time.Second, 5*time.Millisecond)
	rr = ts.request(http.MethodGet, "/api/v1/stats", nil)
	assert.Equal(t, response.Stats{Registered: 1, Queued: 1, RoundsToWin: 3}, decode[response.Stats](t, rr))
}

func TestSpawnBot(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/bots", map[string]string{"strategy": "counter"})
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[response.Bot](t, rr)
	assert.Equal(t, "Counter Bot 1", created.Name)
	assert.NotEmpty(t, created.PeerID)

	rr = ts.request(http.MethodPost, "/api/v1/bots", map[string]string{"strategy": "psychic"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeUnknownBot, decode[apierr.ErrorResponse](t, rr).Error.Code)

	rr = ts.request(http.MethodPost, "/api/v1/bots", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/leaderboard", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestWebSocketThroughRouter(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	alice, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer alice.Close()
	bob, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer bob.Close()

	require.NoError(t, alice.WriteJSON(protocol.Join("Alice")))
	require.NoError(t, alice.WriteJSON(protocol.JoinQueue()))
	require.Eventually(t, func() bool { return ts.app.Sessions.QueueLen() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, bob.WriteJSON(protocol.Join("Bob")))
	require.NoError(t, bob.WriteJSON(protocol.JoinQueue()))

	var msg protocol.Message
	_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, alice.ReadJSON(&msg))
	assert.Equal(t, protocol.TypeMatchFound, msg.Type)
	assert.Equal(t, "Bob", msg.Opponent)
}

func TestEventStreamThroughRouter(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
}
