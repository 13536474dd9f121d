package game

import "context"

// Snapshot is one atomic mutation of a game's persisted state. The store
// must apply all of it in a single transaction: either every part commits
// or none does.
type Snapshot struct {
	Game    GameRecord
	Players []PlayerRecord
	Marks   []MarkRecord

	// AppendTurn, when set, is inserted into the throw log.
	AppendTurn *TurnRecord
	// DeleteTurnID, when set, removes that throw from the log (undo).
	DeleteTurnID string

	// Summary, when set, replaces the game's history row.
	Summary *Summary
	// ClearSummary removes the game's history row (reset for replay).
	ClearSummary bool
}

// Store abstracts persistence so the service can be tested against an
// in-memory fake.
type Store interface {
	CreateGame(ctx context.Context, g GameRecord, players []PlayerRecord, marks []MarkRecord) error
	SaveGame(ctx context.Context, snap Snapshot) error
	DeleteGame(ctx context.Context, gameID string) error

	GetGame(ctx context.Context, gameID string) (GameRecord, error)
	ListPlayers(ctx context.Context, gameID string) ([]PlayerRecord, error)
	ListMarks(ctx context.Context, gameID string) ([]MarkRecord, error)
	ListTurns(ctx context.Context, gameID string) ([]TurnRecord, error)
	LatestInProgressGameID(ctx context.Context) (string, error)
	ListHistory(ctx context.Context) ([]HistoryEntry, error)
}
