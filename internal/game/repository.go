package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists games in Postgres. Every mutating method runs in a
// single transaction so a failure mid-operation leaves committed state
// untouched.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Ensure *Repository implements Store at compile time.
var _ Store = (*Repository)(nil)

// CreateGame inserts the game row, its players and (for cricket) the zeroed
// mark table.
func (r *Repository) CreateGame(ctx context.Context, g GameRecord, players []PlayerRecord, marks []MarkRecord) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
INSERT INTO games (id, status, mode, format, rounds, double_out, current_player_index, dart_index, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`, g.ID, g.Status, g.Mode, g.Format, g.Rounds, g.DoubleOut, g.CurrentPlayerIndex, g.DartIndex, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return err
	}

	for _, p := range players {
		if _, err := tx.Exec(ctx, `
INSERT INTO players (id, name, color)
VALUES ($1, $2, $3);
`, p.PlayerID, p.Name, p.Color); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO game_players (id, game_id, player_id, order_index, score, round_count, turn_start_score, darts_thrown)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`, p.ID, p.GameID, p.PlayerID, p.OrderIndex, p.Score, p.RoundCount, p.TurnStartScore, p.DartsThrown); err != nil {
			return err
		}
	}

	for _, m := range marks {
		if _, err := tx.Exec(ctx, `
INSERT INTO cricket_marks (id, game_id, player_id, segment, marks, points)
VALUES ($1, $2, $3, $4, $5, $6);
`, m.ID, m.GameID, m.PlayerID, m.Segment, m.Marks, m.Points); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// SaveGame applies one Snapshot: game row, player rows, mark rows, the
// optional turn append/delete and the optional summary replacement, all in
// one transaction.
func (r *Repository) SaveGame(ctx context.Context, snap Snapshot) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	g := snap.Game
	_, err = tx.Exec(ctx, `
UPDATE games
SET status = $2, current_player_index = $3, dart_index = $4, updated_at = $5, finished_at = $6
WHERE id = $1;
`, g.ID, g.Status, g.CurrentPlayerIndex, g.DartIndex, g.UpdatedAt, g.FinishedAt)
	if err != nil {
		return err
	}

	for _, p := range snap.Players {
		if _, err := tx.Exec(ctx, `
UPDATE game_players
SET score = $2, round_count = $3, turn_start_score = $4, darts_thrown = $5
WHERE id = $1;
`, p.ID, p.Score, p.RoundCount, p.TurnStartScore, p.DartsThrown); err != nil {
			return err
		}
	}

	for _, m := range snap.Marks {
		if _, err := tx.Exec(ctx, `
UPDATE cricket_marks
SET marks = $4, points = $5
WHERE game_id = $1 AND player_id = $2 AND segment = $3;
`, m.GameID, m.PlayerID, m.Segment, m.Marks, m.Points); err != nil {
			return err
		}
	}

	if snap.DeleteTurnID != "" {
		if _, err := tx.Exec(ctx, `DELETE FROM turns WHERE id = $1;`, snap.DeleteTurnID); err != nil {
			return err
		}
	}

	if t := snap.AppendTurn; t != nil {
		if _, err := tx.Exec(ctx, `
INSERT INTO turns (id, game_id, player_id, order_index, dart_index, segment, base_value, multiplier, score_delta, is_bust, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`, t.ID, t.GameID, t.PlayerID, t.OrderIndex, t.DartIndex, t.Segment, t.BaseValue, t.Multiplier, t.ScoreDelta, t.Bust, t.CreatedAt); err != nil {
			return err
		}
	}

	if snap.ClearSummary || snap.Summary != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM history WHERE game_id = $1;`, g.ID); err != nil {
			return err
		}
	}
	if snap.Summary != nil {
		payload, err := json.Marshal(snap.Summary)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO history (id, game_id, summary_json, created_at)
VALUES (gen_random_uuid(), $1, $2, $3);
`, g.ID, payload, snap.Summary.FinishedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// DeleteGame removes the game and everything owned by it. Child rows cascade
// from games; the shared players rows are removed explicitly.
func (r *Repository) DeleteGame(ctx context.Context, gameID string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `SELECT player_id::text FROM game_players WHERE game_id = $1;`, gameID)
	if err != nil {
		return err
	}
	var playerIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		playerIDs = append(playerIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM games WHERE id = $1;`, gameID); err != nil {
		return err
	}
	if len(playerIDs) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM players WHERE id = ANY($1);`, playerIDs); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetGame(ctx context.Context, gameID string) (GameRecord, error) {
	var g GameRecord
	err := r.db.QueryRow(ctx, `
SELECT id::text, status, mode, format, rounds, double_out, current_player_index, dart_index, created_at, updated_at, finished_at
FROM games
WHERE id = $1;
`, gameID).Scan(
		&g.ID,
		&g.Status,
		&g.Mode,
		&g.Format,
		&g.Rounds,
		&g.DoubleOut,
		&g.CurrentPlayerIndex,
		&g.DartIndex,
		&g.CreatedAt,
		&g.UpdatedAt,
		&g.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GameRecord{}, ErrGameNotFound
		}
		return GameRecord{}, err
	}
	return g, nil
}

func (r *Repository) ListPlayers(ctx context.Context, gameID string) ([]PlayerRecord, error) {
	rows, err := r.db.Query(ctx, `
SELECT gp.id::text, gp.game_id::text, gp.player_id::text, p.name, p.color, gp.order_index, gp.score, gp.round_count, gp.turn_start_score, gp.darts_thrown
FROM game_players gp
JOIN players p ON p.id = gp.player_id
WHERE gp.game_id = $1
ORDER BY gp.order_index ASC;
`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]PlayerRecord, 0)
	for rows.Next() {
		var p PlayerRecord
		if err := rows.Scan(&p.ID, &p.GameID, &p.PlayerID, &p.Name, &p.Color, &p.OrderIndex, &p.Score, &p.RoundCount, &p.TurnStartScore, &p.DartsThrown); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *Repository) ListMarks(ctx context.Context, gameID string) ([]MarkRecord, error) {
	rows, err := r.db.Query(ctx, `
SELECT id::text, game_id::text, player_id::text, segment, marks, points
FROM cricket_marks
WHERE game_id = $1;
`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	marks := make([]MarkRecord, 0)
	for rows.Next() {
		var m MarkRecord
		if err := rows.Scan(&m.ID, &m.GameID, &m.PlayerID, &m.Segment, &m.Marks, &m.Points); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

func (r *Repository) ListTurns(ctx context.Context, gameID string) ([]TurnRecord, error) {
	rows, err := r.db.Query(ctx, `
SELECT id::text, game_id::text, player_id::text, order_index, dart_index, segment, base_value, multiplier, score_delta, is_bust, created_at, seq
FROM turns
WHERE game_id = $1
ORDER BY seq ASC;
`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := make([]TurnRecord, 0)
	for rows.Next() {
		var t TurnRecord
		if err := rows.Scan(&t.ID, &t.GameID, &t.PlayerID, &t.OrderIndex, &t.DartIndex, &t.Segment, &t.BaseValue, &t.Multiplier, &t.ScoreDelta, &t.Bust, &t.CreatedAt, &t.Seq); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (r *Repository) LatestInProgressGameID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `
SELECT id::text
FROM games
WHERE status = 'in_progress'
ORDER BY updated_at DESC
LIMIT 1;
`).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

func (r *Repository) ListHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
SELECT h.id::text, h.game_id::text, h.summary_json, h.created_at, g.mode, g.format, g.rounds
FROM history h
JOIN games g ON g.id = h.game_id
ORDER BY h.created_at DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		var payload []byte
		if err := rows.Scan(&e.HistoryID, &e.GameID, &payload, &e.CreatedAt, &e.Mode, &e.Format, &e.Rounds); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &e.Summary); err != nil {
			return nil, fmt.Errorf("corrupt summary for game %s: %w", e.GameID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
