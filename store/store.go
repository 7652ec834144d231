// Package store persists training-run history to SQLite so convergence
// can be inspected after the fact.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	experiment TEXT NOT NULL,
	episodes INTEGER NOT NULL,
	horizon INTEGER NOT NULL,
	config TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	mean_reward REAL
);
CREATE TABLE IF NOT EXISTS run_episodes (
	run_id TEXT NOT NULL REFERENCES runs(id),
	episode INTEGER NOT NULL,
	timesteps INTEGER NOT NULL,
	reward REAL NOT NULL,
	termination TEXT NOT NULL,
	PRIMARY KEY (run_id, episode)
);
`

// Run is one recorded training run
type Run struct {
	ID         string
	Experiment string
	Episodes   int
	Horizon    int
	Config     string
	StartedAt  time.Time
	FinishedAt *time.Time
	MeanReward *float64
}

// EpisodeRow is one recorded episode of a run
type EpisodeRow struct {
	RunID       string
	Episode     int
	Timesteps   int
	Reward      float64
	Termination string
}

// RunStore records runs and their per-episode statistics
type RunStore struct {
	db *sql.DB
}

// Open creates or opens the run database at the given path
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing run store schema: %w", err)
	}
	return &RunStore{db: db}, nil
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

// CreateRun records the start of a training run and returns its id
func (s *RunStore) CreateRun(ctx context.Context, experiment string, episodes, horizon int, config string) (string, error) {
	id := uuid.NewString()
	query := `INSERT INTO runs (id, experiment, episodes, horizon, config, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, id, experiment, episodes, horizon, config,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// RecordEpisode appends one completed episode to the run
func (s *RunStore) RecordEpisode(ctx context.Context, runID string, episode, timesteps int, reward float64, termination string) error {
	query := `INSERT INTO run_episodes (run_id, episode, timesteps, reward, termination)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, runID, episode, timesteps, reward, termination); err != nil {
		return fmt.Errorf("inserting episode %d: %w", episode, err)
	}
	return nil
}

// FinishRun marks the run complete with its final mean reward
func (s *RunStore) FinishRun(ctx context.Context, runID string, meanReward float64) error {
	query := `UPDATE runs SET finished_at = ?, mean_reward = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339), meanReward, runID)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("finishing run: no run with id %s", runID)
	}
	return nil
}

// GetRun fetches one run by id
func (s *RunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `SELECT id, experiment, episodes, horizon, config, started_at, finished_at, mean_reward
		FROM runs WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)
	return scanRun(row)
}

// ListRuns fetches all recorded runs, newest first
func (s *RunStore) ListRuns(ctx context.Context) ([]*Run, error) {
	query := `SELECT id, experiment, episodes, horizon, config, started_at, finished_at, mean_reward
		FROM runs ORDER BY started_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListEpisodes fetches the episode rows of a run in order
func (s *RunStore) ListEpisodes(ctx context.Context, runID string) ([]*EpisodeRow, error) {
	query := `SELECT run_id, episode, timesteps, reward, termination
		FROM run_episodes WHERE run_id = ? ORDER BY episode`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("listing episodes: %w", err)
	}
	defer rows.Close()

	episodes := make([]*EpisodeRow, 0)
	for rows.Next() {
		e := &EpisodeRow{}
		if err := rows.Scan(&e.RunID, &e.Episode, &e.Timesteps, &e.Reward, &e.Termination); err != nil {
			return nil, fmt.Errorf("scanning episode: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	r := &Run{}
	var startedAt string
	var finishedAt sql.NullString
	var meanReward sql.NullFloat64
	if err := row.Scan(&r.ID, &r.Experiment, &r.Episodes, &r.Horizon, &r.Config, &startedAt, &finishedAt, &meanReward); err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	t, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	r.StartedAt = t
	if finishedAt.Valid && finishedAt.String != "" {
		if ft, err := time.Parse(time.RFC3339, finishedAt.String); err == nil {
			r.FinishedAt = &ft
		}
	}
	if meanReward.Valid {
		r.MeanReward = &meanReward.Float64
	}
	return r, nil
}
