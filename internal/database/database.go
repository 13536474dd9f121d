package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	const enablePgcrypto = `CREATE EXTENSION IF NOT EXISTS pgcrypto;`

	const gamesTable = `
CREATE TABLE IF NOT EXISTS games (
    id                   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    status               TEXT NOT NULL DEFAULT 'in_progress',
    mode                 TEXT NOT NULL,
    format               TEXT NOT NULL,
    rounds               INT NOT NULL,
    double_out           BOOLEAN NOT NULL DEFAULT FALSE,
    current_player_index INT NOT NULL DEFAULT 0,
    dart_index           INT NOT NULL DEFAULT 1,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at          TIMESTAMPTZ
);
`

	const playersTable = `
CREATE TABLE IF NOT EXISTS players (
    id    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name  TEXT NOT NULL,
    color TEXT NOT NULL
);
`

	const gamePlayersTable = `
CREATE TABLE IF NOT EXISTS game_players (
    id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    game_id          UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    player_id        UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    order_index      INT NOT NULL,
    score            INT NOT NULL,
    round_count      INT NOT NULL DEFAULT 0,
    turn_start_score INT NOT NULL,
    darts_thrown     INT NOT NULL DEFAULT 0,
    UNIQUE (game_id, order_index)
);
`

	const turnsTable = `
CREATE TABLE IF NOT EXISTS turns (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    seq         BIGSERIAL,
    game_id     UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    player_id   UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    order_index INT NOT NULL,
    dart_index  INT NOT NULL,
    segment     TEXT NOT NULL,
    base_value  INT NOT NULL,
    multiplier  INT NOT NULL,
    score_delta INT NOT NULL,
    is_bust     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

	const turnsIndex = `
CREATE INDEX IF NOT EXISTS idx_turns_game_seq ON turns(game_id, seq);
`

	const cricketMarksTable = `
CREATE TABLE IF NOT EXISTS cricket_marks (
    id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    game_id   UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    segment   TEXT NOT NULL,
    marks     INT NOT NULL DEFAULT 0,
    points    INT NOT NULL DEFAULT 0,
    UNIQUE (game_id, player_id, segment)
);
`

	const historyTable = `
CREATE TABLE IF NOT EXISTS history (
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    game_id      UUID NOT NULL UNIQUE REFERENCES games(id) ON DELETE CASCADE,
    summary_json JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

	for _, stmt := range []string{
		enablePgcrypto,
		gamesTable,
		playersTable,
		gamePlayersTable,
		turnsTable,
		turnsIndex,
		cricketMarksTable,
		historyTable,
	} {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	slog.Info("migrations applied", "tag", "database")
	return nil
}
