// Package store persists a QA ledger of processing runs in SQLite: one row
// per run with its parameters and timing, and per-metric summary statistics
// of the output grids. The ledger is for inspection and regression checks;
// the grids themselves go to the downstream raster tooling.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cryogrid/snowmetrics/internal/cube"
)

// Store wraps the ledger database.
type Store struct {
	db *sql.DB
}

// Run describes one processing run.
type Run struct {
	ID        string
	SnowYear  int
	TileID    string
	Strategy  string
	Threshold int
	Started   time.Time
	Completed time.Time
}

// GridStats summarizes one output grid.
type GridStats struct {
	Metric      string
	Min         int16
	Max         int16
	Mean        float64
	NodataCount int
}

// Open opens (and if needed creates) the ledger database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			snow_year INTEGER NOT NULL,
			tile_id TEXT NOT NULL,
			strategy TEXT NOT NULL,
			threshold INTEGER NOT NULL,
			started TIMESTAMP NOT NULL,
			completed TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS grid_stats (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			metric TEXT NOT NULL,
			min INTEGER NOT NULL,
			max INTEGER NOT NULL,
			mean REAL NOT NULL,
			nodata_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, metric)
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating ledger schema: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a run and returns its generated identifier.
func (s *Store) BeginRun(ctx context.Context, snowYear int, tileID, strategy string, threshold int) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, snow_year, tile_id, strategy, threshold, started)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, snowYear, tileID, strategy, threshold, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("recording run start: %w", err)
	}
	return runID, nil
}

// CompleteRun marks a run as finished.
func (s *Store) CompleteRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET completed = ? WHERE run_id = ?`,
		time.Now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("recording run completion: %w", err)
	}
	return nil
}

// RecordGridStats computes and stores summary statistics for every named
// output grid of a run, inside one transaction.
func (s *Store) RecordGridStats(ctx context.Context, runID string, grids map[string]*cube.Grid) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO grid_stats (run_id, metric, min, max, mean, nodata_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for name, g := range grids {
		st := Summarize(name, g)
		if _, err := stmt.ExecContext(ctx, runID, st.Metric, st.Min, st.Max, st.Mean, st.NodataCount); err != nil {
			return fmt.Errorf("inserting stats for %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun fetches a run row by identifier.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	var completed sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, snow_year, tile_id, strategy, threshold, started, completed
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&r.ID, &r.SnowYear, &r.TileID, &r.Strategy, &r.Threshold, &r.Started, &completed)
	if err != nil {
		return nil, fmt.Errorf("fetching run %s: %w", runID, err)
	}
	if completed.Valid {
		r.Completed = completed.Time
	}
	return &r, nil
}

// GetGridStats fetches the stored statistics for one run and metric.
func (s *Store) GetGridStats(ctx context.Context, runID, metric string) (*GridStats, error) {
	var st GridStats
	err := s.db.QueryRowContext(ctx,
		`SELECT metric, min, max, mean, nodata_count
		 FROM grid_stats WHERE run_id = ? AND metric = ?`, runID, metric,
	).Scan(&st.Metric, &st.Min, &st.Max, &st.Mean, &st.NodataCount)
	if err != nil {
		return nil, fmt.Errorf("fetching stats for %s/%s: %w", runID, metric, err)
	}
	return &st, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, snow_year, tile_id, strategy, threshold, started, completed
		 FROM runs ORDER BY started DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.SnowYear, &r.TileID, &r.Strategy, &r.Threshold, &r.Started, &completed); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if completed.Valid {
			r.Completed = completed.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListGridStats returns all stored statistics for one run, ordered by metric
// name.
func (s *Store) ListGridStats(ctx context.Context, runID string) ([]GridStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT metric, min, max, mean, nodata_count
		 FROM grid_stats WHERE run_id = ? ORDER BY metric`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stats for %s: %w", runID, err)
	}
	defer rows.Close()

	var stats []GridStats
	for rows.Next() {
		var st GridStats
		if err := rows.Scan(&st.Metric, &st.Min, &st.Max, &st.Mean, &st.NodataCount); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Close closes the ledger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Summarize computes the summary statistics for one grid. Zero is the grids'
// nodata value and is excluded from min/max/mean.
func Summarize(metric string, g *cube.Grid) GridStats {
	st := GridStats{Metric: metric}
	first := true
	sum := 0.0
	count := 0
	for _, v := range g.Data() {
		if v == 0 {
			st.NodataCount++
			continue
		}
		if first {
			st.Min, st.Max = v, v
			first = false
		} else {
			if v < st.Min {
				st.Min = v
			}
			if v > st.Max {
				st.Max = v
			}
		}
		sum += float64(v)
		count++
	}
	if count > 0 {
		st.Mean = sum / float64(count)
	}
	return st
}
