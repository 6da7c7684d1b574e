package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	winner_id   TEXT NOT NULL,
	loser_id    TEXT NOT NULL,
	elo_change  INTEGER NOT NULL,
	finished_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_results_finished_at ON match_results(finished_at);
`

// Record is one concluded duel as kept for the post-battle and profile
// screens.
type Record struct {
	SessionID  string
	WinnerID   string
	LoserID    string
	EloChange  int
	FinishedAt time.Time
}

// Store is the local match-history database.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	// A single writer keeps modernc/sqlite happy.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RecordResult(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO match_results (session_id, winner_id, loser_id, elo_change, finished_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, rec.WinnerID, rec.LoserID, rec.EloChange, rec.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("record match result: %w", err)
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, winner_id, loser_id, elo_change, finished_at
		 FROM match_results ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query match results: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.SessionID, &rec.WinnerID, &rec.LoserID, &rec.EloChange, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
