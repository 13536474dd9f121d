package game

import "errors"

// Sentinel errors shared by the service, repository and handlers.
var (
	ErrGameNotFound = errors.New("game not found")
	ErrNoPlayers    = errors.New("at least one player is required")
	ErrInvalidMode  = errors.New("invalid game mode")
)
