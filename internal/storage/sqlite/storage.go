package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/storage"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens (creating if missing) the database at path and applies the schema
func New(path string) (*Storage, error) {
	dsn := path
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		dsn = path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// Writes are serialised by SQLite anyway; a single connection also keeps
	// an in-memory database shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Standing operations

func (s *Storage) RecordResult(ctx context.Context, winner, loser string) error {
	if winner == "" || loser == "" {
		return model.ErrInvalidResult
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO standings (name, wins) VALUES (?, 1)
        ON CONFLICT(name) DO UPDATE SET wins = wins + 1`, winner); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO standings (name, losses) VALUES (?, 1)
        ON CONFLICT(name) DO UPDATE SET losses = losses + 1`, loser); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Storage) GetStanding(ctx context.Context, name string) (*model.Standing, error) {
	st := model.Standing{Name: name}
	err := s.db.QueryRowContext(ctx,
		`SELECT wins, losses FROM standings WHERE name = ?`, name,
	).Scan(&st.Wins, &st.Losses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (s *Storage) ListStandings(ctx context.Context, limit int) ([]model.Standing, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT name, wins, losses
        FROM standings
        ORDER BY wins DESC, losses ASC, name ASC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := []model.Standing{}
	for rows.Next() {
		var st model.Standing
		if err := rows.Scan(&st.Name, &st.Wins, &st.Losses); err != nil {
			return nil, err
		}
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

// Match history operations

func (s *Storage) SaveMatch(ctx context.Context, record *model.MatchRecord) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO matches
            (id, player_a, player_b, score_a, score_b, rounds, winner, end_reason, started_at, ended_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(record.ID),
		record.Players[0], record.Players[1],
		record.Scores[0], record.Scores[1],
		record.Rounds,
		record.Winner,
		string(record.EndReason),
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		record.EndedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Storage) ListMatches(ctx context.Context, limit int) ([]*model.MatchRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, player_a, player_b, score_a, score_b, rounds, winner, end_reason, started_at, ended_at
        FROM matches
        ORDER BY seq DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []*model.MatchRecord{}
	for rows.Next() {
		var (
			r                 model.MatchRecord
			id, reason        string
			started, finished string
		)
		if err := rows.Scan(&id, &r.Players[0], &r.Players[1], &r.Scores[0], &r.Scores[1],
			&r.Rounds, &r.Winner, &reason, &started, &finished); err != nil {
			return nil, err
		}
		r.ID = model.MatchID(id)
		r.EndReason = model.EndReason(reason)
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at of %s: %w", id, err)
		}
		if r.EndedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse ended_at of %s: %w", id, err)
		}
		matches = append(matches, &r)
	}
	return matches, rows.Err()
}
