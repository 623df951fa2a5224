package model

import "errors"

// Common errors used across the application
var (
	// Protocol errors
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownMessage   = errors.New("unknown message type")
	ErrMessageTooLarge  = errors.New("message exceeds maximum size")

	// Round errors
	ErrInvalidMove    = errors.New("invalid move")
	ErrNotInMatch     = errors.New("player is not in a match")
	ErrAlreadyInMatch = errors.New("player is already in a match")

	// Peer errors
	ErrPeerClosed     = errors.New("peer connection closed")
	ErrSendBufferFull = errors.New("peer send buffer full")

	// Leaderboard errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidResult  = errors.New("winner and loser names must not be empty")

	// Bot errors
	ErrUnknownStrategy = errors.New("unknown bot strategy")
)
