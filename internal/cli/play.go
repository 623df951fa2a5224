package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/rpsarena/internal/dependencies/random"
	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/protocol"
	"github.com/mcoot/rpsarena/internal/services/bot"
)

const dialTimeout = 5 * time.Second

func newPlayCmd() *cobra.Command {
	var (
		opts     PlayOptions
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join the queue and play over the game listener",
		Long: `Connect to the game listener, join the matchmaking queue and play.

Moves are read from stdin (rock, paper, scissors or r, p, s; q to quit)
unless --bot picks a strategy to play automatically.

Strategies: ` + strings.Join(model.ValidBotStrategies(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strategy != "" {
				s, err := bot.NewStrategy(strategy, random.New())
				if err != nil {
					return err
				}
				opts.Strategy = s
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dialer := net.Dialer{Timeout: dialTimeout}
			conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr)
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", cfg.Addr, err)
			}
			defer func() { _ = conn.Close() }()

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			summary, err := Play(ctx, conn, cmd.InOrStdin(), out, opts)
			if err != nil {
				return err
			}
			out.Print(summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", os.Getenv("USER"), "Display name (server assigns one when empty)")
	cmd.Flags().StringVar(&strategy, "bot", "", "Play automatically with this strategy")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 0, "Leave after this many rounds (0 for no limit)")
	cmd.Flags().IntVar(&opts.Matches, "matches", 1, "Leave after this many matches end (0 for no limit)")

	return cmd
}

// PlayOptions controls a play session
type PlayOptions struct {
	Name string
	// Strategy chooses moves automatically; nil prompts on the input reader
	Strategy bot.Strategy
	Rounds   int
	Matches  int
}

// PlayEvent is one server message as seen by the local player
type PlayEvent struct {
	Type          string `json:"type"`
	Opponent      string `json:"opponent,omitempty"`
	Move          string `json:"move,omitempty"`
	Round         int    `json:"round,omitempty"`
	YourMove      string `json:"your_move,omitempty"`
	OpponentMove  string `json:"opponent_move,omitempty"`
	Result        string `json:"result,omitempty"`
	YourScore     int    `json:"your_score"`
	OpponentScore int    `json:"opponent_score"`
	Winner        string `json:"winner,omitempty"`
	Message       string `json:"message,omitempty"`
}

// PlaySummary tallies a finished play session
type PlaySummary struct {
	Name      string `json:"name"`
	Matches   int    `json:"matches"`
	Won       int    `json:"won"`
	Lost      int    `json:"lost"`
	Abandoned int    `json:"abandoned"`
	Rounds    int    `json:"rounds"`
}

var errQuit = errors.New("quit")

// Play runs one client session over conn until a limit is reached, the
// player quits, ctx is cancelled or the server goes away.
func Play(ctx context.Context, conn net.Conn, in io.Reader, out *Output, opts PlayOptions) (PlaySummary, error) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	s := &playSession{
		opts:    opts,
		reader:  protocol.NewReader(conn),
		writer:  protocol.NewWriter(conn),
		input:   bufio.NewScanner(in),
		out:     out,
		summary: PlaySummary{Name: opts.Name},
	}

	err := s.run()
	switch {
	case err == nil, errors.Is(err, errQuit):
		return s.summary, nil
	case ctx.Err() != nil:
		return s.summary, nil
	case errors.Is(err, io.EOF):
		return s.summary, errors.New("server closed the connection")
	default:
		return s.summary, err
	}
}

type playSession struct {
	opts    PlayOptions
	reader  *protocol.Reader
	writer  *protocol.Writer
	input   *bufio.Scanner
	out     *Output
	summary PlaySummary

	history []bot.Round
	score   [2]int
}

func (s *playSession) run() error {
	if err := s.writer.WriteMessage(protocol.Join(s.opts.Name)); err != nil {
		return err
	}
	if err := s.writer.WriteMessage(protocol.JoinQueue()); err != nil {
		return err
	}

	for {
		msg, err := s.reader.ReadMessage()
		if err != nil {
			return err
		}

		done, err := s.handle(msg)
		if err != nil || done {
			return err
		}
	}
}

// handle reacts to one server message and reports whether the session is over
func (s *playSession) handle(msg protocol.Message) (bool, error) {
	switch msg.Type {
	case protocol.TypeMatchFound:
		s.history = nil
		s.score = [2]int{}
		s.emit(PlayEvent{Type: msg.Type, Opponent: msg.Opponent})

	case protocol.TypeRequestMove:
		move, err := s.chooseMove()
		if err != nil {
			return false, err
		}
		s.emit(PlayEvent{Type: msg.Type, Move: string(move)})
		if err := s.writer.WriteMessage(protocol.SubmitMove(move)); err != nil {
			return false, err
		}

	case protocol.TypeRoundResult:
		switch model.Outcome(msg.Result) {
		case model.OutcomeWin:
			s.score[0]++
		case model.OutcomeLose:
			s.score[1]++
		}
		s.history = append(s.history, bot.Round{
			Mine:   model.Move(msg.YourMove),
			Theirs: model.Move(msg.OpponentMove),
		})
		s.summary.Rounds++
		s.emit(PlayEvent{
			Type:          msg.Type,
			Round:         msg.Round,
			YourMove:      msg.YourMove,
			OpponentMove:  msg.OpponentMove,
			Result:        msg.Result,
			YourScore:     s.score[0],
			OpponentScore: s.score[1],
		})
		if s.opts.Rounds > 0 && s.summary.Rounds >= s.opts.Rounds {
			return true, nil
		}

	case protocol.TypeGameOver:
		ev := PlayEvent{Type: msg.Type, Winner: msg.Winner}
		if msg.YourScore != nil {
			ev.YourScore = *msg.YourScore
		}
		if msg.OpponentScore != nil {
			ev.OpponentScore = *msg.OpponentScore
		}
		if ev.YourScore > ev.OpponentScore {
			s.summary.Won++
		} else {
			s.summary.Lost++
		}
		s.emit(ev)
		return s.matchEnded(true)

	case protocol.TypeOpponentDisconnected:
		s.summary.Abandoned++
		s.emit(PlayEvent{Type: msg.Type})
		// The server requeues us itself
		return s.matchEnded(false)

	case protocol.TypeError:
		s.emit(PlayEvent{Type: msg.Type, Message: msg.Message})

	default:
		s.emit(PlayEvent{Type: msg.Type})
	}
	return false, nil
}

func (s *playSession) matchEnded(requeue bool) (bool, error) {
	s.summary.Matches++
	if s.opts.Matches > 0 && s.summary.Matches >= s.opts.Matches {
		return true, nil
	}
	if requeue {
		return false, s.writer.WriteMessage(protocol.JoinQueue())
	}
	return false, nil
}

func (s *playSession) chooseMove() (model.Move, error) {
	if s.opts.Strategy != nil {
		return s.opts.Strategy.Choose(s.history), nil
	}

	for {
		if s.out.format != FormatJSON {
			fmt.Fprint(s.out.w, "Your move [r/p/s, q to quit]: ")
		}
		if !s.input.Scan() {
			if err := s.input.Err(); err != nil {
				return "", err
			}
			return "", errQuit
		}
		move, err := parseMoveInput(s.input.Text())
		if err == nil {
			return move, nil
		}
		if errors.Is(err, errQuit) {
			return "", err
		}
		s.out.PrintMessage(fmt.Sprintf("%q is not a move", strings.TrimSpace(s.input.Text())))
	}
}

func (s *playSession) emit(ev PlayEvent) {
	s.out.printLine(ev)
}

// parseMoveInput accepts full move names or their first letter
func parseMoveInput(raw string) (model.Move, error) {
	switch in := strings.ToLower(strings.TrimSpace(raw)); in {
	case "r":
		return model.MoveRock, nil
	case "p":
		return model.MovePaper, nil
	case "s":
		return model.MoveScissors, nil
	case "q", "quit":
		return "", errQuit
	default:
		return model.ParseMove(in)
	}
}
