package protocol

import "github.com/mcoot/rpsarena/internal/model"

// Client to server message types
const (
	TypeJoin      = "join"
	TypeJoinQueue = "join_queue"
	TypeMove      = "move"
)

// Server to client message types
const (
	TypeMatchFound           = "match_found"
	TypeRequestMove          = "request_move"
	TypeRoundResult          = "round_result"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeGameOver             = "game_over"
	TypeError                = "error"
)

// Message is the flat envelope for every line on the wire.
// Only the fields relevant to Type are populated.
type Message struct {
	Type string `json:"type"`

	// join
	Player string `json:"player,omitempty"`
	// move
	Move string `json:"move,omitempty"`

	// match_found
	Opponent string `json:"opponent,omitempty"`

	// round_result
	YourMove     string `json:"your_move,omitempty"`
	OpponentMove string `json:"opponent_move,omitempty"`
	Result       string `json:"result,omitempty"`
	Round        int    `json:"round,omitempty"`

	// game_over
	Winner        string `json:"winner,omitempty"`
	YourScore     *int   `json:"your_score,omitempty"`
	OpponentScore *int   `json:"opponent_score,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

// Join creates a join request
func Join(player string) Message {
	return Message{Type: TypeJoin, Player: player}
}

// JoinQueue creates a join_queue request
func JoinQueue() Message {
	return Message{Type: TypeJoinQueue}
}

// SubmitMove creates a move request
func SubmitMove(move model.Move) Message {
	return Message{Type: TypeMove, Move: string(move)}
}

// MatchFound tells a player who they were paired with
func MatchFound(opponent string) Message {
	return Message{Type: TypeMatchFound, Opponent: opponent}
}

// RequestMove asks a player for their next move
func RequestMove() Message {
	return Message{Type: TypeRequestMove}
}

// RoundResult reports an adjudicated round from the recipient's perspective
func RoundResult(round int, yours, theirs model.Move, result model.Outcome) Message {
	return Message{
		Type:         TypeRoundResult,
		Round:        round,
		YourMove:     string(yours),
		OpponentMove: string(theirs),
		Result:       string(result),
	}
}

// OpponentDisconnected tells a player their opponent left
func OpponentDisconnected() Message {
	return Message{Type: TypeOpponentDisconnected}
}

// GameOver reports the final tally from the recipient's perspective.
// Scores are pointers so a 0 score is still sent.
func GameOver(winner string, yourScore, opponentScore int) Message {
	return Message{
		Type:          TypeGameOver,
		Winner:        winner,
		YourScore:     &yourScore,
		OpponentScore: &opponentScore,
	}
}

// Error reports a rejected request
func Error(message string) Message {
	return Message{Type: TypeError, Message: message}
}
