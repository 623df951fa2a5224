package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rpsarena/internal/api"
	"github.com/mcoot/rpsarena/internal/factory"
	"github.com/mcoot/rpsarena/internal/network"
	"github.com/mcoot/rpsarena/internal/session"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	gameAddr   string
}

func newCLIRunner(t *testing.T, ts *testServer) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "rpsctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/rpsctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  ts.adminURL,
		gameAddr:   ts.gameAddr,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--addr", r.gameAddr,
		"--output", "json",
	}, args...)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the game listener and admin API on loopback ports
type testServer struct {
	app      *factory.App
	adminURL string
	gameAddr string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// SQLite so results go through a real database
	app, err := factory.New(factory.Config{
		Logger:      logger,
		Session:     &session.Config{RoundsToWin: 2},
		StorageType: factory.StorageTypeSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "leaderboard.db"),
	})
	require.NoError(t, err)

	gameCfg := network.DefaultConfig()
	gameCfg.Port = 0
	game := network.NewServer(gameCfg, app.Coordinator, logger)
	require.NoError(t, game.Listen())

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Leaderboard: app.Leaderboard,
		Sessions:    app.Sessions,
		Bots:        app.BotService,
		WebSocket:   network.NewWebSocketHandler(app.Coordinator, gameCfg, logger),
		Events:      app.EventHub,
	})
	adminCfg := api.DefaultServerConfig()
	adminCfg.Addr = "127.0.0.1:0"
	admin := api.NewServer(router, adminCfg, logger)
	require.NoError(t, admin.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := game.Serve(ctx); err != nil {
			t.Logf("game server error: %v", err)
		}
	}()
	go func() {
		if err := admin.Start(); err != nil {
			t.Logf("admin server error: %v", err)
		}
	}()

	// Wait for server to be ready
	adminURL := "http://" + admin.Addr()
	waitForServer(t, adminURL+"/api/v1/health")

	return &testServer{
		app:      app,
		adminURL: adminURL,
		gameAddr: game.Addr().String(),
		shutdown: func() {
			cancel()
			app.EventHub.Close()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = admin.Shutdown(shutdownCtx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type standingResponse struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Played int    `json:"played"`
}

type leaderboardResponse struct {
	Standings []standingResponse `json:"standings"`
}

type matchesResponse struct {
	Matches []struct {
		Players   [2]string `json:"players"`
		Scores    [2]int    `json:"scores"`
		Winner    string    `json:"winner"`
		EndReason string    `json:"end_reason"`
	} `json:"matches"`
}

type statsResponse struct {
	Registered    int `json:"registered"`
	Queued        int `json:"queued"`
	ActiveMatches int `json:"active_matches"`
	RoundsToWin   int `json:"rounds_to_win"`
}

type botResponse struct {
	PeerID   string `json:"peer_id"`
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_StatsAndBotSpawn(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts)

	output, err := cli.run("bot", "spawn", "cycle")
	require.NoError(t, err, "output: %s", output)

	var bot botResponse
	require.NoError(t, json.Unmarshal([]byte(output), &bot))
	assert.Equal(t, "cycle", bot.Strategy)
	assert.Equal(t, "Cycle Bot 1", bot.Name)

	require.Eventually(t, func() bool {
		return ts.app.Sessions.Stats().Queued == 1
	}, 2*time.Second, 10*time.Millisecond)

	output, err = cli.run("stats")
	require.NoError(t, err, "output: %s", output)

	var stats statsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &stats))
	assert.Equal(t, 1, stats.Registered)
	assert.Equal(t, 1, stats.Queued)
	assert.Equal(t, 2, stats.RoundsToWin)

	_, err = cli.run("bot", "spawn", "psychic")
	assert.Error(t, err)
}

func TestCLI_FullMatchFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts)

	// Two players, both scripted, play one match to ROUNDS_TO_WIN
	var wg sync.WaitGroup
	outputs := make([]string, 2)
	errs := make([]error, 2)
	for i, name := range []string{"Alice", "Bob"} {
		i, name := i, name
		wg.Add(1)
		go func() {
			defer wg.Done()
			outputs[i], errs[i] = cli.run("play", "--name", name, "--bot", "random", "--matches", "1")
		}()
	}
	wg.Wait()
	for i := range errs {
		require.NoError(t, errs[i], "output: %s", outputs[i])
	}

	require.Eventually(t, func() bool {
		matches, err := ts.app.Leaderboard.RecentMatches(context.Background(), 0)
		return err == nil && len(matches) == 1
	}, 2*time.Second, 10*time.Millisecond)

	output, err := cli.run("matches")
	require.NoError(t, err, "output: %s", output)

	var matches matchesResponse
	require.NoError(t, json.Unmarshal([]byte(output), &matches))
	require.Len(t, matches.Matches, 1)
	match := matches.Matches[0]
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, match.Players[:])
	assert.Equal(t, "completed", match.EndReason)
	assert.Contains(t, []string{"Alice", "Bob"}, match.Winner)

	output, err = cli.run("leaderboard")
	require.NoError(t, err, "output: %s", output)

	var board leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board.Standings, 2)
	assert.Equal(t, match.Winner, board.Standings[0].Name)
	assert.Equal(t, 1, board.Standings[0].Wins)
	assert.Equal(t, 1, board.Standings[1].Losses)

	output, err = cli.run("player", match.Winner)
	require.NoError(t, err, "output: %s", output)

	var standing standingResponse
	require.NoError(t, json.Unmarshal([]byte(output), &standing))
	assert.Equal(t, 1, standing.Played)

	_, err = cli.run("player", "Nobody")
	assert.Error(t, err)
}
