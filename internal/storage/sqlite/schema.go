package sqlite

// schema is applied on open; every statement is idempotent
const schema = `
CREATE TABLE IF NOT EXISTS standings (
    name   TEXT PRIMARY KEY,
    wins   INTEGER NOT NULL DEFAULT 0,
    losses INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS matches (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT NOT NULL UNIQUE,
    player_a   TEXT NOT NULL,
    player_b   TEXT NOT NULL,
    score_a    INTEGER NOT NULL,
    score_b    INTEGER NOT NULL,
    rounds     INTEGER NOT NULL,
    winner     TEXT NOT NULL DEFAULT '',
    end_reason TEXT NOT NULL,
    started_at TEXT NOT NULL,
    ended_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_standings_rank ON standings (wins DESC, losses ASC, name ASC);
`
