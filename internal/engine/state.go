package engine

import "github.com/dartmania/game-api/internal/board"

// Mode selects the rule set a game is scored under.
type Mode string

const (
	ModeCountdown Mode = "countdown"
	ModeCountup   Mode = "countup"
	ModeCricket   Mode = "cricket"
)

// Status is the lifecycle state of a game.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Config holds the immutable rule parameters fixed at game creation.
// Target 0 means no target (countdown falls back to 301, countup is
// open-ended). Rounds 0 means unlimited turns.
type Config struct {
	Mode      Mode
	Target    int
	Rounds    int
	DoubleOut bool
}

// InitialScore is each player's score at the start of the game.
func (c Config) InitialScore() int {
	if c.Mode == ModeCountdown {
		if c.Target > 0 {
			return c.Target
		}
		return 301
	}
	return 0
}

// Mark tracks one player's progress on a single cricket target.
type Mark struct {
	Marks  int
	Points int
}

// Player is the mutable per-player scoring state. Marks is populated only
// for cricket games, keyed by board.CricketTargets.
type Player struct {
	ID             string
	Score          int
	TurnStartScore int
	DartsThrown    int
	RoundCount     int
	Marks          map[string]*Mark
}

func (p *Player) closedAll() bool {
	for _, target := range board.CricketTargets {
		if m := p.Marks[target]; m == nil || m.Marks < 3 {
			return false
		}
	}
	return true
}

// State is the full mutable game state. It is a plain in-memory value:
// persistence and replay both go through Apply, so any state is a fold of
// the throw log over NewState.
type State struct {
	Config        Config
	Status        Status
	CurrentPlayer int
	DartIndex     int
	Players       []*Player
}

// NewState returns the creation-time state for the given seating order.
func NewState(cfg Config, playerIDs []string) *State {
	initial := cfg.InitialScore()
	players := make([]*Player, len(playerIDs))
	for i, id := range playerIDs {
		p := &Player{ID: id, Score: initial, TurnStartScore: initial}
		if cfg.Mode == ModeCricket {
			p.Marks = make(map[string]*Mark, len(board.CricketTargets))
			for _, target := range board.CricketTargets {
				p.Marks[target] = &Mark{}
			}
		}
		players[i] = p
	}
	return &State{
		Config:    cfg,
		Status:    StatusInProgress,
		DartIndex: 1,
		Players:   players,
	}
}

// Replay rebuilds state from scratch by folding the ordered throw history
// over a fresh initial state. Replaying the same history always yields an
// identical state; undo is replay minus the newest throw.
func Replay(cfg Config, playerIDs []string, history []board.Segment) *State {
	s := NewState(cfg, playerIDs)
	for _, seg := range history {
		s.Apply(seg)
	}
	return s
}
