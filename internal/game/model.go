package game

import "time"

// GameRecord is the persisted games row.
type GameRecord struct {
	ID                 string
	Status             string
	Mode               string
	Format             string
	Rounds             int
	DoubleOut          bool
	CurrentPlayerIndex int
	DartIndex          int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	FinishedAt         *time.Time
}

// PlayerRecord joins a game_players row with its players row. ID is the
// game_players row id, PlayerID the players row id.
type PlayerRecord struct {
	ID             string
	GameID         string
	PlayerID       string
	Name           string
	Color          string
	OrderIndex     int
	Score          int
	RoundCount     int
	TurnStartScore int
	DartsThrown    int
}

// MarkRecord is one cricket_marks row (game x player x target).
type MarkRecord struct {
	ID       string
	GameID   string
	PlayerID string
	Segment  string
	Marks    int
	Points   int
}

// TurnRecord is one throw in the append-only log. Seq is assigned by the
// store and defines replay order.
type TurnRecord struct {
	ID         string
	GameID     string
	PlayerID   string
	OrderIndex int
	DartIndex  int
	Segment    string
	BaseValue  int
	Multiplier int
	ScoreDelta int
	Bust       bool
	CreatedAt  time.Time
	Seq        int64
}

// PodiumEntry is one ranked player in a game summary.
type PodiumEntry struct {
	Place int    `json:"place"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Color string `json:"color"`
}

// Summary is the snapshot written to history when a game is finalized.
type Summary struct {
	Podium     []PodiumEntry `json:"podium"`
	Mode       string        `json:"mode"`
	Format     string        `json:"format"`
	Rounds     int           `json:"rounds"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// HistoryEntry is one row of the history listing.
type HistoryEntry struct {
	HistoryID string    `json:"historyId"`
	GameID    string    `json:"gameId"`
	Summary   Summary   `json:"summary"`
	Mode      string    `json:"mode"`
	Format    string    `json:"format"`
	Rounds    int       `json:"rounds"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateGameRequest is the body we expect on POST /api/game.
type CreateGameRequest struct {
	Players   []string `json:"players"`
	Mode      string   `json:"mode"`
	Format    string   `json:"format"`
	Rounds    int      `json:"rounds"`
	DoubleOut bool     `json:"doubleOut"`
}

// ThrowRequest is the body we expect on POST /api/throw.
type ThrowRequest struct {
	GameID  string `json:"gameId"`
	Segment string `json:"segment"`
}

// GameRef is the body for operations that only name a game (undo, end).
type GameRef struct {
	GameID string `json:"gameId"`
}

// GameView is the game meta section of a state view.
type GameView struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	Mode               string `json:"mode"`
	Format             string `json:"format"`
	Rounds             int    `json:"rounds"`
	DoubleOut          bool   `json:"doubleOut"`
	CurrentPlayerIndex int    `json:"currentPlayerIndex"`
	DartIndex          int    `json:"dartIndex"`
}

// MarkView is one cricket target's marks/points for a player.
type MarkView struct {
	Marks  int `json:"marks"`
	Points int `json:"points"`
}

// PlayerView is one player's section of a state view, in seating order.
type PlayerView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Color       string              `json:"color"`
	OrderIndex  int                 `json:"orderIndex"`
	Score       int                 `json:"score"`
	RoundCount  int                 `json:"roundCount"`
	DartsThrown int                 `json:"dartsThrown"`
	Cricket     map[string]MarkView `json:"cricket"`
}

// TurnView is one throw log entry of a state view.
type TurnView struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"playerId"`
	Segment    string    `json:"segment"`
	DartIndex  int       `json:"dartIndex"`
	ScoreDelta int       `json:"scoreDelta"`
	CreatedAt  time.Time `json:"createdAt"`
	IsBust     bool      `json:"isBust"`
}

// GameStateView is the full read-state returned to the client after every
// operation. Game is nil when the requested game does not exist.
type GameStateView struct {
	Game      *GameView    `json:"game"`
	Players   []PlayerView `json:"players"`
	Turns     []TurnView   `json:"turns"`
	OutCombos []string     `json:"outCombos"`
}
