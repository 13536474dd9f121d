package game

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/dartmania/game-api/internal/engine"
)

// memStore is an in-memory Store used to exercise the service without
// Postgres. Snapshots apply atomically under the service's own lock.
type memStore struct {
	games   map[string]GameRecord
	players map[string][]PlayerRecord
	marks   map[string][]MarkRecord
	turns   map[string][]TurnRecord
	history map[string]HistoryEntry
	seq     int64
}

func newMemStore() *memStore {
	return &memStore{
		games:   make(map[string]GameRecord),
		players: make(map[string][]PlayerRecord),
		marks:   make(map[string][]MarkRecord),
		turns:   make(map[string][]TurnRecord),
		history: make(map[string]HistoryEntry),
	}
}

func (m *memStore) CreateGame(_ context.Context, g GameRecord, players []PlayerRecord, marks []MarkRecord) error {
	m.games[g.ID] = g
	m.players[g.ID] = append([]PlayerRecord(nil), players...)
	m.marks[g.ID] = append([]MarkRecord(nil), marks...)
	return nil
}

func (m *memStore) SaveGame(_ context.Context, snap Snapshot) error {
	gameID := snap.Game.ID
	m.games[gameID] = snap.Game

	existing := m.players[gameID]
	for _, p := range snap.Players {
		for i := range existing {
			if existing[i].ID == p.ID {
				existing[i] = p
			}
		}
	}

	marks := m.marks[gameID]
	for _, u := range snap.Marks {
		for i := range marks {
			if marks[i].PlayerID == u.PlayerID && marks[i].Segment == u.Segment {
				marks[i].Marks = u.Marks
				marks[i].Points = u.Points
			}
		}
	}

	if snap.DeleteTurnID != "" {
		turns := m.turns[gameID]
		for i, t := range turns {
			if t.ID == snap.DeleteTurnID {
				m.turns[gameID] = append(turns[:i:i], turns[i+1:]...)
				break
			}
		}
	}
	if snap.AppendTurn != nil {
		t := *snap.AppendTurn
		m.seq++
		t.Seq = m.seq
		m.turns[gameID] = append(m.turns[gameID], t)
	}

	if snap.ClearSummary || snap.Summary != nil {
		delete(m.history, gameID)
	}
	if snap.Summary != nil {
		m.history[gameID] = HistoryEntry{
			HistoryID: gameID + "-summary",
			GameID:    gameID,
			Summary:   *snap.Summary,
			Mode:      snap.Game.Mode,
			Format:    snap.Game.Format,
			Rounds:    snap.Game.Rounds,
			CreatedAt: snap.Summary.FinishedAt,
		}
	}
	return nil
}

func (m *memStore) DeleteGame(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.players, gameID)
	delete(m.marks, gameID)
	delete(m.turns, gameID)
	delete(m.history, gameID)
	return nil
}

func (m *memStore) GetGame(_ context.Context, gameID string) (GameRecord, error) {
	g, ok := m.games[gameID]
	if !ok {
		return GameRecord{}, ErrGameNotFound
	}
	return g, nil
}

func (m *memStore) ListPlayers(_ context.Context, gameID string) ([]PlayerRecord, error) {
	players := append([]PlayerRecord(nil), m.players[gameID]...)
	sort.Slice(players, func(i, j int) bool { return players[i].OrderIndex < players[j].OrderIndex })
	return players, nil
}

func (m *memStore) ListMarks(_ context.Context, gameID string) ([]MarkRecord, error) {
	return append([]MarkRecord(nil), m.marks[gameID]...), nil
}

func (m *memStore) ListTurns(_ context.Context, gameID string) ([]TurnRecord, error) {
	turns := append([]TurnRecord(nil), m.turns[gameID]...)
	sort.Slice(turns, func(i, j int) bool { return turns[i].Seq < turns[j].Seq })
	return turns, nil
}

func (m *memStore) LatestInProgressGameID(_ context.Context) (string, error) {
	var id string
	var latest time.Time
	for _, g := range m.games {
		if g.Status == string(engine.StatusInProgress) && (id == "" || g.UpdatedAt.After(latest)) {
			id = g.ID
			latest = g.UpdatedAt
		}
	}
	return id, nil
}

func (m *memStore) ListHistory(_ context.Context) ([]HistoryEntry, error) {
	entries := make([]HistoryEntry, 0, len(m.history))
	for _, e := range m.history {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

var _ Store = (*memStore)(nil)

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store)
	base := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc, store
}

func createGame(t *testing.T, svc *Service, req CreateGameRequest) GameStateView {
	t.Helper()
	view, err := svc.CreateGame(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if view.Game == nil {
		t.Fatal("CreateGame returned no game")
	}
	return view
}

func TestCreateGameSeatsAndColorsPlayers(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{
		Players: []string{"Ana", "Ben", "  ", "Dana"},
		Mode:    "countdown",
		Format:  "501",
		Rounds:  15,
	})

	if len(view.Players) != 4 {
		t.Fatalf("expected 4 players, got %d", len(view.Players))
	}
	names := make(map[string]bool)
	for i, p := range view.Players {
		if p.OrderIndex != i {
			t.Errorf("player %d has orderIndex %d", i, p.OrderIndex)
		}
		if p.Color != colorPalette[i%len(colorPalette)] {
			t.Errorf("player %d has color %q, expected palette entry", i, p.Color)
		}
		if p.Score != 501 {
			t.Errorf("player %d starts at %d, expected 501", i, p.Score)
		}
		names[p.Name] = true
	}
	for _, name := range []string{"Ana", "Ben", "Dana"} {
		if !names[name] {
			t.Errorf("player %q missing after seating shuffle", name)
		}
	}
	// the blank name gets a placeholder
	if len(names) != 4 {
		t.Errorf("expected 4 distinct names, got %v", names)
	}
	if len(store.marks[view.Game.ID]) != 0 {
		t.Error("countdown games should have no cricket marks")
	}
}

func TestCreateGameCricketMarkTable(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{
		Players: []string{"Ana", "Ben"},
		Mode:    "cricket",
		Format:  "inf",
	})

	if got := len(store.marks[view.Game.ID]); got != 14 {
		t.Fatalf("expected 7 mark rows per player, got %d total", got)
	}
	for _, m := range store.marks[view.Game.ID] {
		if m.Marks != 0 || m.Points != 0 {
			t.Errorf("mark row %s/%s not zeroed", m.PlayerID, m.Segment)
		}
	}
	for _, p := range view.Players {
		if p.Score != 0 {
			t.Errorf("cricket player starts at %d, expected 0", p.Score)
		}
	}
}

func TestCreateGameValidation(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.CreateGame(context.Background(), CreateGameRequest{Mode: "countdown"}); err == nil {
		t.Error("expected error for empty player list")
	}
	if _, err := svc.CreateGame(context.Background(), CreateGameRequest{Players: []string{"Ana"}, Mode: "shanghai"}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCreateGameDefaultsRounds(t *testing.T) {
	svc, _ := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countup", Format: "inf"})
	if view.Game.Rounds != 10 {
		t.Errorf("expected default 10 rounds, got %d", view.Game.Rounds)
	}
}

func TestApplyThrowRecordsTurn(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "301"})
	gameID := view.Game.ID

	after, err := svc.ApplyThrow(context.Background(), gameID, "T20")
	if err != nil {
		t.Fatalf("ApplyThrow: %v", err)
	}
	if after.Players[0].Score != 241 {
		t.Errorf("expected 241 remaining, got %d", after.Players[0].Score)
	}
	if after.Game.DartIndex != 2 {
		t.Errorf("expected dartIndex 2, got %d", after.Game.DartIndex)
	}
	turns := store.turns[gameID]
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn record, got %d", len(turns))
	}
	turn := turns[0]
	if turn.Segment != "T20" || turn.BaseValue != 20 || turn.Multiplier != 3 || turn.ScoreDelta != -60 || turn.Bust {
		t.Errorf("turn record mismatch: %+v", turn)
	}
}

func TestApplyThrowInvalidSegmentRejected(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "301"})

	if _, err := svc.ApplyThrow(context.Background(), view.Game.ID, "X13"); err == nil {
		t.Fatal("expected error for malformed segment")
	}
	if len(store.turns[view.Game.ID]) != 0 {
		t.Error("malformed segment must not mutate the throw log")
	}
}

func TestApplyThrowUnknownGameIsNoop(t *testing.T) {
	svc, _ := newTestService()
	view, err := svc.ApplyThrow(context.Background(), "no-such-game", "S20")
	if err != nil {
		t.Fatalf("ApplyThrow: %v", err)
	}
	if view.Game != nil {
		t.Error("expected nil game view for unknown id")
	}
}

func TestUndoRestoresPriorState(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana", "Ben"}, Mode: "countdown", Format: "301", DoubleOut: true})
	gameID := view.Game.ID

	for _, label := range []string{"T20", "S19", "D10"} {
		if _, err := svc.ApplyThrow(context.Background(), gameID, label); err != nil {
			t.Fatalf("ApplyThrow(%q): %v", label, err)
		}
	}

	beforeGame := store.games[gameID]
	beforePlayers, _ := store.ListPlayers(context.Background(), gameID)

	if _, err := svc.ApplyThrow(context.Background(), gameID, "T19"); err != nil {
		t.Fatalf("ApplyThrow: %v", err)
	}
	if _, err := svc.UndoThrow(context.Background(), gameID); err != nil {
		t.Fatalf("UndoThrow: %v", err)
	}

	afterGame := store.games[gameID]
	afterPlayers, _ := store.ListPlayers(context.Background(), gameID)

	if afterGame.Status != beforeGame.Status ||
		afterGame.CurrentPlayerIndex != beforeGame.CurrentPlayerIndex ||
		afterGame.DartIndex != beforeGame.DartIndex {
		t.Errorf("game counters not restored:\nbefore: %+v\nafter:  %+v", beforeGame, afterGame)
	}
	for i := range beforePlayers {
		b, a := beforePlayers[i], afterPlayers[i]
		if b.Score != a.Score || b.RoundCount != a.RoundCount || b.DartsThrown != a.DartsThrown || b.TurnStartScore != a.TurnStartScore {
			t.Errorf("player %d not restored:\nbefore: %+v\nafter:  %+v", i, b, a)
		}
	}
	if len(store.turns[gameID]) != 3 {
		t.Errorf("expected 3 turns after undo, got %d", len(store.turns[gameID]))
	}
}

func TestUndoCricketRestoresMarks(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana", "Ben"}, Mode: "cricket", Format: "inf"})
	gameID := view.Game.ID

	if _, err := svc.ApplyThrow(context.Background(), gameID, "T20"); err != nil {
		t.Fatalf("ApplyThrow: %v", err)
	}
	before, _ := store.ListMarks(context.Background(), gameID)

	if _, err := svc.ApplyThrow(context.Background(), gameID, "T20"); err != nil {
		t.Fatalf("ApplyThrow: %v", err)
	}
	if _, err := svc.UndoThrow(context.Background(), gameID); err != nil {
		t.Fatalf("UndoThrow: %v", err)
	}
	after, _ := store.ListMarks(context.Background(), gameID)

	byKey := func(marks []MarkRecord) map[string]MarkRecord {
		out := make(map[string]MarkRecord, len(marks))
		for _, m := range marks {
			out[m.PlayerID+"/"+m.Segment] = m
		}
		return out
	}
	b, a := byKey(before), byKey(after)
	for key, bm := range b {
		am := a[key]
		if bm.Marks != am.Marks || bm.Points != am.Points {
			t.Errorf("mark %s not restored: before=%+v after=%+v", key, bm, am)
		}
	}
}

func TestUndoWithEmptyLogIsNoop(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "301"})

	before := store.games[view.Game.ID]
	after, err := svc.UndoThrow(context.Background(), view.Game.ID)
	if err != nil {
		t.Fatalf("UndoThrow: %v", err)
	}
	if after.Game.Status != before.Status || after.Game.DartIndex != before.DartIndex {
		t.Error("undo with no throws must not change state")
	}
}

func TestFinishWritesSummaryAndUndoReopens(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "2"})
	gameID := view.Game.ID

	after, err := svc.ApplyThrow(context.Background(), gameID, "D1")
	if err != nil {
		t.Fatalf("ApplyThrow: %v", err)
	}
	if after.Game.Status != string(engine.StatusCompleted) {
		t.Fatalf("expected completed game, got %s", after.Game.Status)
	}
	entries, _ := store.ListHistory(context.Background())
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	podium := entries[0].Summary.Podium
	if len(podium) != 1 || podium[0].Place != 1 || podium[0].Score != 0 {
		t.Errorf("unexpected podium: %+v", podium)
	}

	reopened, err := svc.UndoThrow(context.Background(), gameID)
	if err != nil {
		t.Fatalf("UndoThrow: %v", err)
	}
	if reopened.Game.Status != string(engine.StatusInProgress) {
		t.Errorf("undo should reopen the game, got %s", reopened.Game.Status)
	}
	if entries, _ := store.ListHistory(context.Background()); len(entries) != 0 {
		t.Error("undo should delete the history summary")
	}
	if store.games[gameID].FinishedAt != nil {
		t.Error("undo should clear finished_at")
	}

	// Re-finishing regenerates the summary.
	if _, err := svc.ApplyThrow(context.Background(), gameID, "D1"); err != nil {
		t.Fatalf("ApplyThrow: %v", err)
	}
	if entries, _ := store.ListHistory(context.Background()); len(entries) != 1 {
		t.Error("re-finalization should recreate the history summary")
	}
}

func TestRoundLimitFinalizesWithAscendingPodium(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "301", Rounds: 10})
	gameID := view.Game.ID

	for turn := 0; turn < 10; turn++ {
		for dart := 0; dart < 3; dart++ {
			if _, err := svc.ApplyThrow(context.Background(), gameID, "S1"); err != nil {
				t.Fatalf("ApplyThrow: %v", err)
			}
		}
	}

	final, _ := svc.GetGameState(context.Background(), gameID)
	if final.Game.Status != string(engine.StatusCompleted) {
		t.Fatalf("expected completed after 10 rounds, got %s", final.Game.Status)
	}
	entries, _ := store.ListHistory(context.Background())
	if len(entries) != 1 {
		t.Fatalf("expected a summary, got %d", len(entries))
	}
	p := entries[0].Summary.Podium[0]
	if p.Score != 301-30 {
		t.Errorf("expected podium score %d, got %d", 301-30, p.Score)
	}
}

func TestThrowOnCompletedGameIsNoop(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "301"})
	gameID := view.Game.ID

	if _, err := svc.EndGame(context.Background(), gameID); err != nil {
		t.Fatalf("EndGame: %v", err)
	}
	after, err := svc.ApplyThrow(context.Background(), gameID, "T20")
	if err != nil {
		t.Fatalf("ApplyThrow: %v", err)
	}
	if after.Game.Status != string(engine.StatusCompleted) {
		t.Errorf("status should stay completed, got %s", after.Game.Status)
	}
	if len(store.turns[gameID]) != 0 {
		t.Error("no turn may be recorded on a completed game")
	}
}

func TestEndGameEarlyRanksCountupDescending(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana", "Ben"}, Mode: "countup", Format: "inf"})
	gameID := view.Game.ID

	// First seated player scores 60, second passes.
	for _, label := range []string{"T20", "MISS", "MISS", "MISS", "MISS", "MISS"} {
		if _, err := svc.ApplyThrow(context.Background(), gameID, label); err != nil {
			t.Fatalf("ApplyThrow(%q): %v", label, err)
		}
	}
	if _, err := svc.EndGame(context.Background(), gameID); err != nil {
		t.Fatalf("EndGame: %v", err)
	}

	entries, _ := store.ListHistory(context.Background())
	if len(entries) != 1 {
		t.Fatalf("expected a summary, got %d", len(entries))
	}
	podium := entries[0].Summary.Podium
	if len(podium) != 2 {
		t.Fatalf("expected 2 podium entries, got %d", len(podium))
	}
	if podium[0].Score != 60 || podium[1].Score != 0 {
		t.Errorf("countup podium must rank descending: %+v", podium)
	}
	if podium[0].Name != view.Players[0].Name {
		t.Errorf("expected first seated player on top, got %q", podium[0].Name)
	}
}

func TestGetGameStateHealsUnfinalizedGame(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "301", Rounds: 1})
	gameID := view.Game.ID

	// Simulate a game whose completing mutation never finalized.
	players := store.players[gameID]
	players[0].RoundCount = 1

	healed, err := svc.GetGameState(context.Background(), gameID)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if healed.Game.Status != string(engine.StatusCompleted) {
		t.Errorf("read should finalize a rounds-complete game, got %s", healed.Game.Status)
	}
	if entries, _ := store.ListHistory(context.Background()); len(entries) != 1 {
		t.Error("healing read should write the summary")
	}
}

func TestDeleteGameRemovesEverything(t *testing.T) {
	svc, store := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana", "Ben"}, Mode: "cricket", Format: "inf"})
	gameID := view.Game.ID

	if _, err := svc.ApplyThrow(context.Background(), gameID, "T20"); err != nil {
		t.Fatalf("ApplyThrow: %v", err)
	}
	if _, err := svc.EndGame(context.Background(), gameID); err != nil {
		t.Fatalf("EndGame: %v", err)
	}
	if err := svc.DeleteGame(context.Background(), gameID); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}

	if _, err := store.GetGame(context.Background(), gameID); err != ErrGameNotFound {
		t.Error("game row should be gone")
	}
	if entries, _ := svc.ListHistory(context.Background()); len(entries) != 0 {
		t.Error("history should no longer list the deleted game")
	}
	if len(store.players[gameID]) != 0 || len(store.turns[gameID]) != 0 || len(store.marks[gameID]) != 0 {
		t.Error("dependent rows should be unreachable after delete")
	}
}

func TestLatestInProgressGame(t *testing.T) {
	svc, _ := newTestService()
	first := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "301"})
	second := createGame(t, svc, CreateGameRequest{Players: []string{"Ben"}, Mode: "countup", Format: "inf"})

	id, err := svc.LatestInProgressGameID(context.Background())
	if err != nil {
		t.Fatalf("LatestInProgressGameID: %v", err)
	}
	if id != second.Game.ID {
		t.Errorf("expected newest game %s, got %s", second.Game.ID, id)
	}

	if _, err := svc.EndGame(context.Background(), second.Game.ID); err != nil {
		t.Fatalf("EndGame: %v", err)
	}
	id, _ = svc.LatestInProgressGameID(context.Background())
	if id != first.Game.ID {
		t.Errorf("expected %s after ending the newer game, got %s", first.Game.ID, id)
	}
}

func TestViewCheckoutSuggestions(t *testing.T) {
	svc, _ := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "40", DoubleOut: true})

	if len(view.OutCombos) == 0 || view.OutCombos[0] != "D20" {
		t.Errorf("expected D20 suggested first for 40 remaining, got %v", view.OutCombos)
	}
	if len(view.OutCombos) > 12 {
		t.Errorf("checkout suggestions must be capped at 12, got %d", len(view.OutCombos))
	}

	cricket := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "cricket", Format: "inf"})
	if len(cricket.OutCombos) != 0 {
		t.Errorf("cricket games have no checkouts, got %v", cricket.OutCombos)
	}
}

func TestViewSerializesEmptyCollections(t *testing.T) {
	svc, _ := newTestService()
	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countup", Format: "inf"})

	payload, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	body := string(payload)
	// A fresh game has no throws and no checkouts, but the keys must still
	// be present as empty arrays, not omitted.
	for _, key := range []string{`"turns":[]`, `"outCombos":[]`} {
		if !strings.Contains(body, key) {
			t.Errorf("expected %s in serialized view, got %s", key, body)
		}
	}
}

// listHookStore runs a callback once after ListPlayers returns, to interleave
// a write between two reads of the same game.
type listHookStore struct {
	*memStore
	afterListPlayers func()
}

func (s *listHookStore) ListPlayers(ctx context.Context, gameID string) ([]PlayerRecord, error) {
	players, err := s.memStore.ListPlayers(ctx, gameID)
	if fn := s.afterListPlayers; fn != nil {
		s.afterListPlayers = nil
		fn()
	}
	return players, err
}

func TestHealOnReadDoesNotOverwriteNewerThrow(t *testing.T) {
	mem := newMemStore()
	store := &listHookStore{memStore: mem}
	svc := NewService(store)
	base := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	view := createGame(t, svc, CreateGameRequest{Players: []string{"Ana"}, Mode: "countdown", Format: "301", Rounds: 1})
	gameID := view.Game.ID
	mem.players[gameID][0].RoundCount = 1

	// A throw commits right after the read's first look at the game, before
	// the finalizing write can run. The heal must pick it up, not clobber it.
	store.afterListPlayers = func() {
		p := &mem.players[gameID][0]
		p.Score = 241
		p.DartsThrown = 1
		mem.seq++
		mem.turns[gameID] = append(mem.turns[gameID], TurnRecord{
			ID:         "turn-late",
			GameID:     gameID,
			PlayerID:   p.PlayerID,
			DartIndex:  1,
			Segment:    "T20",
			BaseValue:  20,
			Multiplier: 3,
			ScoreDelta: -60,
			Seq:        mem.seq,
		})
	}

	healed, err := svc.GetGameState(context.Background(), gameID)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if healed.Game.Status != string(engine.StatusCompleted) {
		t.Fatalf("expected the read to finalize the game, got %s", healed.Game.Status)
	}
	if got := mem.players[gameID][0].Score; got != 241 {
		t.Errorf("finalizing read overwrote a newer throw: score %d, expected 241", got)
	}
	if len(mem.turns[gameID]) != 1 {
		t.Errorf("expected the late throw to survive, got %d turns", len(mem.turns[gameID]))
	}
	entries, _ := mem.ListHistory(context.Background())
	if len(entries) != 1 || entries[0].Summary.Podium[0].Score != 241 {
		t.Errorf("summary must reflect the state at finalization time: %+v", entries)
	}
}
