// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuircle/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the best score and attempt summaries.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS best_score (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			score REAL NOT NULL,
			set_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			policy TEXT NOT NULL,
			outcome TEXT NOT NULL,
			score REAL NOT NULL,
			sweep REAL NOT NULL,
			samples INTEGER NOT NULL,
			mean_radius REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_policy ON attempts(policy);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// BestScore returns the stored best score. A missing record reads as 0.
func (s *Store) BestScore(ctx context.Context) (model.Best, error) {
	var score float64
	var setAt string
	err := s.db.QueryRowContext(ctx, `SELECT score, set_at FROM best_score WHERE id = 1`).Scan(&score, &setAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Best{}, nil
	}
	if err != nil {
		return model.Best{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, setAt)
	if err != nil {
		return model.Best{}, err
	}
	return model.Best{Score: score, SetAt: parsed, Found: true}, nil
}

// SetBestScore stores score as the best score. The write is skipped in SQL
// when the stored score is already greater or equal, so the record never
// decreases even with several writers.
func (s *Store) SetBestScore(ctx context.Context, score float64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO best_score (id, score, set_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET score = excluded.score, set_at = excluded.set_at
		 WHERE excluded.score > best_score.score`,
		score,
		at.Format(time.RFC3339Nano),
	)
	return err
}

// ResetBestScore removes the best score record.
func (s *Store) ResetBestScore(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM best_score`)
	return err
}

// RecordAttempt stores an attempt summary and returns its id.
func (s *Store) RecordAttempt(ctx context.Context, a model.Attempt) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (started_at, ended_at, policy, outcome, score, sweep, samples, mean_radius)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.StartedAt.Format(time.RFC3339Nano),
		a.EndedAt.Format(time.RFC3339Nano),
		a.Policy,
		a.Outcome,
		a.Score,
		a.Sweep,
		a.Samples,
		a.MeanRadius,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAttempts returns attempts filtered by stats config, oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.Attempt, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Policy != "" {
		clauses = append(clauses, "policy = ?")
		args = append(args, cfg.Policy)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, policy, outcome, score, sweep, samples, mean_radius
		FROM attempts
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var startedAt, endedAt string
		if err := rows.Scan(&a.ID, &startedAt, &endedAt, &a.Policy, &a.Outcome, &a.Score, &a.Sweep, &a.Samples, &a.MeanRadius); err != nil {
			return nil, err
		}
		if a.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if a.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	return attempts, nil
}

// OutcomeCounts returns how many attempts ended in each outcome.
func (s *Store) OutcomeCounts(ctx context.Context, policy string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM attempts
		 WHERE (? = '' OR policy = ?)
		 GROUP BY outcome`, policy, policy)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	counts := map[string]int{}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
