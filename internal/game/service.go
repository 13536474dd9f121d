package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dartmania/game-api/internal/board"
	"github.com/dartmania/game-api/internal/engine"
)

var colorPalette = []string{
	"#ff4f7a",
	"#4fd1ff",
	"#7cff4f",
	"#ffd84f",
	"#9c7cff",
	"#ff944f",
	"#4fff9c",
	"#ff4fd1",
}

const defaultRounds = 10

// Service owns all game mutations. A single mutex serializes create, throw,
// undo, end and delete across every game, so interleaved requests never race
// on shared counters; reads go straight to the store.
type Service struct {
	store Store
	mu    sync.Mutex
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// parseFormat turns the stored format string into a numeric target.
// "inf" and anything non-numeric mean no target.
func parseFormat(format string) int {
	if format == "inf" {
		return 0
	}
	n, err := strconv.Atoi(format)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func engineConfig(g GameRecord) engine.Config {
	return engine.Config{
		Mode:      engine.Mode(g.Mode),
		Target:    parseFormat(g.Format),
		Rounds:    g.Rounds,
		DoubleOut: g.DoubleOut,
	}
}

// CreateGame seats the players in random order, assigns palette colors and
// initial scores, pre-populates cricket marks and persists everything.
func (s *Service) CreateGame(ctx context.Context, req CreateGameRequest) (GameStateView, error) {
	if len(req.Players) == 0 {
		return GameStateView{}, ErrNoPlayers
	}
	mode := engine.Mode(req.Mode)
	if mode != engine.ModeCountdown && mode != engine.ModeCountup && mode != engine.ModeCricket {
		return GameStateView{}, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	rounds := req.Rounds
	if rounds <= 0 {
		rounds = defaultRounds
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now()
	g := GameRecord{
		ID:        uuid.NewString(),
		Status:    string(engine.StatusInProgress),
		Mode:      req.Mode,
		Format:    req.Format,
		Rounds:    rounds,
		DoubleOut: req.DoubleOut,
		DartIndex: 1,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	initial := engineConfig(g).InitialScore()

	seated := append([]string(nil), req.Players...)
	rand.Shuffle(len(seated), func(i, j int) {
		seated[i], seated[j] = seated[j], seated[i]
	})

	players := make([]PlayerRecord, len(seated))
	var marks []MarkRecord
	for i, name := range seated {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		playerID := uuid.NewString()
		players[i] = PlayerRecord{
			ID:             uuid.NewString(),
			GameID:         g.ID,
			PlayerID:       playerID,
			Name:           name,
			Color:          colorPalette[i%len(colorPalette)],
			OrderIndex:     i,
			Score:          initial,
			TurnStartScore: initial,
		}
		if mode == engine.ModeCricket {
			for _, target := range board.CricketTargets {
				marks = append(marks, MarkRecord{
					ID:       uuid.NewString(),
					GameID:   g.ID,
					PlayerID: playerID,
					Segment:  target,
				})
			}
		}
	}

	if err := s.store.CreateGame(ctx, g, players, marks); err != nil {
		return GameStateView{}, err
	}
	slog.Info("game created", "tag", "game", "id", g.ID, "mode", g.Mode, "players", len(players))
	return s.buildView(ctx, g.ID)
}

// ApplyThrow runs one dart through the engine and persists the mutation
// atomically. Absent or completed games are a benign no-op returning the
// current view.
func (s *Service) ApplyThrow(ctx context.Context, gameID, segmentLabel string) (GameStateView, error) {
	seg, err := board.Parse(segmentLabel)
	if err != nil {
		return GameStateView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, players, st, err := s.loadState(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return s.buildView(ctx, gameID)
		}
		return GameStateView{}, err
	}

	throw, ok := st.Apply(seg)
	if !ok {
		return s.buildView(ctx, gameID)
	}

	now := s.now()
	snap := s.syncRecords(st, g, players, now)
	snap.AppendTurn = &TurnRecord{
		ID:         uuid.NewString(),
		GameID:     g.ID,
		PlayerID:   throw.PlayerID,
		OrderIndex: throw.OrderIndex,
		DartIndex:  throw.DartNumber,
		Segment:    seg.Label(),
		BaseValue:  seg.BaseValue(),
		Multiplier: seg.Multiplier(),
		ScoreDelta: throw.ScoreDelta,
		Bust:       throw.Bust,
		CreatedAt:  now,
	}
	if st.Status == engine.StatusCompleted {
		s.finalize(&snap, now)
	}
	if err := s.store.SaveGame(ctx, snap); err != nil {
		return GameStateView{}, err
	}
	return s.buildView(ctx, gameID)
}

// UndoThrow deletes the newest throw and rebuilds the game by replaying the
// remaining log from the creation-time state. With an empty log it is a
// no-op returning the current view.
func (s *Service) UndoThrow(ctx context.Context, gameID string) (GameStateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return s.buildView(ctx, gameID)
		}
		return GameStateView{}, err
	}
	turns, err := s.store.ListTurns(ctx, gameID)
	if err != nil {
		return GameStateView{}, err
	}
	if len(turns) == 0 {
		return s.buildView(ctx, gameID)
	}
	last := turns[len(turns)-1]
	remaining := turns[:len(turns)-1]

	players, err := s.store.ListPlayers(ctx, gameID)
	if err != nil {
		return GameStateView{}, err
	}

	history := make([]board.Segment, len(remaining))
	for i, turn := range remaining {
		seg, err := board.Parse(turn.Segment)
		if err != nil {
			return GameStateView{}, fmt.Errorf("corrupt throw log for game %s: %w", gameID, err)
		}
		history[i] = seg
	}
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.PlayerID
	}
	st := engine.Replay(engineConfig(g), ids, history)

	now := s.now()
	snap := s.syncRecords(st, g, players, now)
	snap.DeleteTurnID = last.ID
	if st.Status == engine.StatusCompleted {
		s.finalize(&snap, now)
	} else {
		snap.ClearSummary = true
		snap.Game.FinishedAt = nil
	}
	if err := s.store.SaveGame(ctx, snap); err != nil {
		return GameStateView{}, err
	}
	slog.Info("throw undone", "tag", "game", "id", gameID, "turn", last.ID)
	return s.buildView(ctx, gameID)
}

// EndGame forces finalization regardless of rounds or target.
func (s *Service) EndGame(ctx context.Context, gameID string) (GameStateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, players, st, err := s.loadState(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return s.buildView(ctx, gameID)
		}
		return GameStateView{}, err
	}

	now := s.now()
	snap := s.syncRecords(st, g, players, now)
	s.finalize(&snap, now)
	if err := s.store.SaveGame(ctx, snap); err != nil {
		return GameStateView{}, err
	}
	return s.buildView(ctx, gameID)
}

// GetGameState returns the current view. If every player has played the
// configured rounds but the game was never finalized, it finalizes on read.
func (s *Service) GetGameState(ctx context.Context, gameID string) (GameStateView, error) {
	g, _, st, err := s.loadState(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return s.buildView(ctx, gameID)
		}
		return GameStateView{}, err
	}

	if g.Status == string(engine.StatusInProgress) && st.CompletionDue() {
		s.mu.Lock()
		err := s.finalizeIfDue(ctx, gameID)
		s.mu.Unlock()
		if err != nil {
			return GameStateView{}, err
		}
	}
	return s.buildView(ctx, gameID)
}

// finalizeIfDue re-reads the game under the caller-held mutex and finalizes
// it if completion conditions still hold. The re-read matters: a throw may
// have committed between the unlocked completion check and acquiring the
// lock, and finalizing from that earlier load would overwrite it.
func (s *Service) finalizeIfDue(ctx context.Context, gameID string) error {
	g, players, st, err := s.loadState(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return nil
		}
		return err
	}
	if g.Status != string(engine.StatusInProgress) || !st.CompletionDue() {
		return nil
	}
	now := s.now()
	snap := s.syncRecords(st, g, players, now)
	s.finalize(&snap, now)
	return s.store.SaveGame(ctx, snap)
}

// LatestInProgressGameID returns the most recently updated in-progress game,
// or "" when none exists.
func (s *Service) LatestInProgressGameID(ctx context.Context) (string, error) {
	return s.store.LatestInProgressGameID(ctx)
}

func (s *Service) ListHistory(ctx context.Context) ([]HistoryEntry, error) {
	return s.store.ListHistory(ctx)
}

// DeleteGame removes the game and everything it owns: players, marks, turns
// and history.
func (s *Service) DeleteGame(ctx context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.DeleteGame(ctx, gameID); err != nil {
		return err
	}
	slog.Info("game deleted", "tag", "game", "id", gameID)
	return nil
}

// loadState reads the game's records and lifts them into engine state.
// Records and engine players share seating order.
func (s *Service) loadState(ctx context.Context, gameID string) (GameRecord, []PlayerRecord, *engine.State, error) {
	g, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return GameRecord{}, nil, nil, err
	}
	players, err := s.store.ListPlayers(ctx, gameID)
	if err != nil {
		return GameRecord{}, nil, nil, err
	}
	sort.Slice(players, func(i, j int) bool { return players[i].OrderIndex < players[j].OrderIndex })

	cfg := engineConfig(g)
	st := &engine.State{
		Config:        cfg,
		Status:        engine.Status(g.Status),
		CurrentPlayer: g.CurrentPlayerIndex,
		DartIndex:     g.DartIndex,
		Players:       make([]*engine.Player, len(players)),
	}
	for i, p := range players {
		st.Players[i] = &engine.Player{
			ID:             p.PlayerID,
			Score:          p.Score,
			TurnStartScore: p.TurnStartScore,
			DartsThrown:    p.DartsThrown,
			RoundCount:     p.RoundCount,
		}
	}
	if cfg.Mode == engine.ModeCricket {
		marks, err := s.store.ListMarks(ctx, gameID)
		if err != nil {
			return GameRecord{}, nil, nil, err
		}
		byPlayer := make(map[string]map[string]*engine.Mark, len(players))
		for _, p := range st.Players {
			p.Marks = make(map[string]*engine.Mark, len(board.CricketTargets))
			for _, target := range board.CricketTargets {
				p.Marks[target] = &engine.Mark{}
			}
			byPlayer[p.ID] = p.Marks
		}
		for _, m := range marks {
			if entry, ok := byPlayer[m.PlayerID]; ok {
				entry[m.Segment] = &engine.Mark{Marks: m.Marks, Points: m.Points}
			}
		}
	}
	return g, players, st, nil
}

// syncRecords copies engine state back into persistence records and returns
// the snapshot to save. Finalization fields are filled in by finalize.
func (s *Service) syncRecords(st *engine.State, g GameRecord, players []PlayerRecord, now time.Time) Snapshot {
	g.Status = string(st.Status)
	g.CurrentPlayerIndex = st.CurrentPlayer
	g.DartIndex = st.DartIndex
	g.UpdatedAt = now

	updated := make([]PlayerRecord, len(players))
	var marks []MarkRecord
	for i, p := range players {
		ep := st.Players[i]
		p.Score = ep.Score
		p.TurnStartScore = ep.TurnStartScore
		p.DartsThrown = ep.DartsThrown
		p.RoundCount = ep.RoundCount
		updated[i] = p
		if ep.Marks != nil {
			for _, target := range board.CricketTargets {
				m := ep.Marks[target]
				marks = append(marks, MarkRecord{
					GameID:   g.ID,
					PlayerID: p.PlayerID,
					Segment:  target,
					Marks:    m.Marks,
					Points:   m.Points,
				})
			}
		}
	}
	return Snapshot{Game: g, Players: updated, Marks: marks}
}

// finalize stamps completion on the snapshot and attaches the summary that
// replaces any prior history row for the game.
func (s *Service) finalize(snap *Snapshot, now time.Time) {
	snap.Game.Status = string(engine.StatusCompleted)
	snap.Game.FinishedAt = &now
	snap.Summary = &Summary{
		Podium:     podium(snap.Game, snap.Players),
		Mode:       snap.Game.Mode,
		Format:     snap.Game.Format,
		Rounds:     snap.Game.Rounds,
		FinishedAt: now,
	}
	snap.ClearSummary = false
}

// podium ranks players by final score: ascending for countdown and cricket,
// descending for countup. Top three places only.
func podium(g GameRecord, players []PlayerRecord) []PodiumEntry {
	ranked := append([]PlayerRecord(nil), players...)
	ascending := g.Mode != string(engine.ModeCountup)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ascending {
			return ranked[i].Score < ranked[j].Score
		}
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	entries := make([]PodiumEntry, len(ranked))
	for i, p := range ranked {
		entries[i] = PodiumEntry{Place: i + 1, Name: p.Name, Score: p.Score, Color: p.Color}
	}
	return entries
}

// buildView assembles the full read-state for a game, including checkout
// suggestions for the active player.
func (s *Service) buildView(ctx context.Context, gameID string) (GameStateView, error) {
	g, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return GameStateView{}, nil
		}
		return GameStateView{}, err
	}
	players, err := s.store.ListPlayers(ctx, gameID)
	if err != nil {
		return GameStateView{}, err
	}
	sort.Slice(players, func(i, j int) bool { return players[i].OrderIndex < players[j].OrderIndex })

	var marksByPlayer map[string]map[string]MarkView
	if g.Mode == string(engine.ModeCricket) {
		marks, err := s.store.ListMarks(ctx, gameID)
		if err != nil {
			return GameStateView{}, err
		}
		marksByPlayer = make(map[string]map[string]MarkView)
		for _, m := range marks {
			if marksByPlayer[m.PlayerID] == nil {
				marksByPlayer[m.PlayerID] = make(map[string]MarkView, len(board.CricketTargets))
			}
			marksByPlayer[m.PlayerID][m.Segment] = MarkView{Marks: m.Marks, Points: m.Points}
		}
	}

	turns, err := s.store.ListTurns(ctx, gameID)
	if err != nil {
		return GameStateView{}, err
	}

	view := GameStateView{
		Game: &GameView{
			ID:                 g.ID,
			Status:             g.Status,
			Mode:               g.Mode,
			Format:             g.Format,
			Rounds:             g.Rounds,
			DoubleOut:          g.DoubleOut,
			CurrentPlayerIndex: g.CurrentPlayerIndex,
			DartIndex:          g.DartIndex,
		},
		Players:   make([]PlayerView, len(players)),
		Turns:     make([]TurnView, len(turns)),
		OutCombos: []string{},
	}
	for i, p := range players {
		view.Players[i] = PlayerView{
			ID:          p.PlayerID,
			Name:        p.Name,
			Color:       p.Color,
			OrderIndex:  p.OrderIndex,
			Score:       p.Score,
			RoundCount:  p.RoundCount,
			DartsThrown: p.DartsThrown,
			Cricket:     marksByPlayer[p.PlayerID],
		}
	}
	for i, t := range turns {
		view.Turns[i] = TurnView{
			ID:         t.ID,
			PlayerID:   t.PlayerID,
			Segment:    t.Segment,
			DartIndex:  t.DartIndex,
			ScoreDelta: t.ScoreDelta,
			CreatedAt:  t.CreatedAt,
			IsBust:     t.Bust,
		}
	}

	if g.CurrentPlayerIndex >= 0 && g.CurrentPlayerIndex < len(players) {
		view.OutCombos = outCombos(g, players[g.CurrentPlayerIndex])
	}
	return view, nil
}

// outCombos computes checkout suggestions for the active player. Cricket and
// open-ended countup have no checkouts.
func outCombos(g GameRecord, p PlayerRecord) []string {
	target := parseFormat(g.Format)
	var remaining int
	switch g.Mode {
	case string(engine.ModeCountdown):
		remaining = p.Score
	case string(engine.ModeCountup):
		if target <= 0 {
			return []string{}
		}
		remaining = target - p.Score
	default:
		return []string{}
	}
	combos := board.Checkouts(remaining, g.DoubleOut)
	if combos == nil {
		return []string{}
	}
	return combos
}
