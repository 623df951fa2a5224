package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(w io.Writer, format string) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == FormatJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == FormatJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// printLine emits one compact JSON object per line so streams stay greppable
func (o *Output) printLine(data any) {
	if o.format == FormatJSON {
		b, _ := json.Marshal(data)
		fmt.Fprintln(o.w, string(b))
		return
	}
	o.printText(data)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Standing:
		o.printStanding(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case Matches:
		o.printMatches(v)
	case Stats:
		o.printStats(v)
	case Bot:
		o.printBot(v)
	case PlayEvent:
		o.printPlayEvent(v)
	case PlaySummary:
		o.printPlaySummary(v)
	case StreamEvent:
		o.printStreamEvent(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Standing response type (matches API)
type Standing struct {
	Rank   int    `json:"rank,omitempty"`
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Played int    `json:"played"`
}

// Leaderboard response type
type Leaderboard struct {
	Standings []Standing `json:"standings"`
}

// Match response type
type Match struct {
	ID         string    `json:"id"`
	Players    [2]string `json:"players"`
	Scores     [2]int    `json:"scores"`
	Rounds     int       `json:"rounds"`
	Winner     string    `json:"winner,omitempty"`
	EndReason  string    `json:"end_reason"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	DurationMs int64     `json:"duration_ms"`
}

// Matches response type
type Matches struct {
	Matches []Match `json:"matches"`
}

// Stats response type
type Stats struct {
	Registered    int `json:"registered"`
	Queued        int `json:"queued"`
	ActiveMatches int `json:"active_matches"`
	RoundsToWin   int `json:"rounds_to_win"`
}

// Bot response type
type Bot struct {
	PeerID   string `json:"peer_id"`
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printStanding(s Standing) {
	fmt.Fprintf(o.w, "Player: %s\n", s.Name)
	fmt.Fprintf(o.w, "Wins: %d\n", s.Wins)
	fmt.Fprintf(o.w, "Losses: %d\n", s.Losses)
	fmt.Fprintf(o.w, "Played: %d\n", s.Played)
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Standings) == 0 {
		fmt.Fprintln(o.w, "No results recorded yet")
		return
	}
	width := len("Player")
	for _, s := range l.Standings {
		width = max(width, len(s.Name))
	}
	fmt.Fprintf(o.w, "%-4s  %-*s  %5s  %6s\n", "#", width, "Player", "Wins", "Losses")
	for _, s := range l.Standings {
		fmt.Fprintf(o.w, "%-4d  %-*s  %5d  %6d\n", s.Rank, width, s.Name, s.Wins, s.Losses)
	}
}

func (o *Output) printMatches(m Matches) {
	if len(m.Matches) == 0 {
		fmt.Fprintln(o.w, "No matches played yet")
		return
	}
	for _, match := range m.Matches {
		result := "abandoned"
		if match.Winner != "" {
			result = match.Winner + " won"
		}
		fmt.Fprintf(o.w, "%s  %s %d - %d %s  (%s, %d rounds, %s)\n",
			match.EndedAt.Local().Format("2006-01-02 15:04:05"),
			match.Players[0], match.Scores[0], match.Scores[1], match.Players[1],
			result, match.Rounds, (time.Duration(match.DurationMs) * time.Millisecond).String())
	}
}

func (o *Output) printStats(s Stats) {
	fmt.Fprintf(o.w, "Registered: %d\n", s.Registered)
	fmt.Fprintf(o.w, "Queued: %d\n", s.Queued)
	fmt.Fprintf(o.w, "Active Matches: %d\n", s.ActiveMatches)
	if s.RoundsToWin > 0 {
		fmt.Fprintf(o.w, "Rounds To Win: %d\n", s.RoundsToWin)
	} else {
		fmt.Fprintln(o.w, "Rounds To Win: unlimited")
	}
}

func (o *Output) printBot(b Bot) {
	fmt.Fprintf(o.w, "Bot: %s (%s)\n", b.Name, b.PeerID)
	fmt.Fprintf(o.w, "Strategy: %s\n", b.Strategy)
}

func (o *Output) printPlayEvent(e PlayEvent) {
	switch e.Type {
	case "match_found":
		fmt.Fprintf(o.w, "Matched against %s\n", e.Opponent)
	case "request_move":
		if e.Move != "" {
			fmt.Fprintf(o.w, "Playing %s\n", e.Move)
		}
	case "round_result":
		fmt.Fprintf(o.w, "Round %d: %s vs %s, you %s (%d-%d)\n",
			e.Round, e.YourMove, e.OpponentMove, e.Result, e.YourScore, e.OpponentScore)
	case "game_over":
		fmt.Fprintf(o.w, "Game over: %s wins %d-%d\n", e.Winner, e.YourScore, e.OpponentScore)
	case "opponent_disconnected":
		fmt.Fprintln(o.w, "Opponent disconnected, back in the queue")
	case "error":
		fmt.Fprintf(o.w, "Server error: %s\n", e.Message)
	default:
		fmt.Fprintf(o.w, "%s\n", e.Type)
	}
}

func (o *Output) printPlaySummary(s PlaySummary) {
	fmt.Fprintf(o.w, "Player: %s\n", s.Name)
	fmt.Fprintf(o.w, "Matches: %d (won %d, lost %d, abandoned %d)\n",
		s.Matches, s.Won, s.Lost, s.Abandoned)
	fmt.Fprintf(o.w, "Rounds: %d\n", s.Rounds)
}

func (o *Output) printStreamEvent(e StreamEvent) {
	data := strings.ReplaceAll(e.Data, "\n", " ")
	if len(data) > 100 {
		data = data[:100] + "..."
	}
	fmt.Fprintf(o.w, "[%s] %s: %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Event, data)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
