// Package store records run summaries in a SQLite database so sweeps can be
// compared after the fact.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the database handle.
type Store struct {
	*sql.DB
}

// Run is one stored run summary.
type Run struct {
	ID            uuid.UUID
	SweepID       string
	Model         string
	Params        map[string]string
	Seed          int64
	Width, Height int
	Rounds        int
	Reason        string
	Broken        int
	MaxDepth      int
	Leaves        int
	MeanLeafDepth float64
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; sweeps record from several goroutines.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db}, nil
}

// RecordRun inserts r, assigning a fresh id when r.ID is zero, and returns the
// id used.
func (s *Store) RecordRun(r Run) (uuid.UUID, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	params := ""
	if len(r.Params) > 0 {
		data, err := yaml.Marshal(r.Params)
		if err != nil {
			return r.ID, err
		}
		params = string(data)
	}
	query := `
		INSERT INTO runs (run_id, sweep_id, model, params, seed, width, height,
			rounds, reason, broken, max_depth, leaves, mean_leaf_depth)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.Exec(query, r.ID.String(), r.SweepID, r.Model, params, r.Seed, r.Width, r.Height,
		r.Rounds, r.Reason, r.Broken, r.MaxDepth, r.Leaves, r.MeanLeafDepth)
	if err != nil {
		return r.ID, fmt.Errorf("failed to insert run: %v", err)
	}
	return r.ID, nil
}

// Runs returns the runs of one sweep in insertion order. An empty sweepID
// returns every run.
func (s *Store) Runs(sweepID string) ([]Run, error) {
	query := `
		SELECT run_id, sweep_id, model, params, seed, width, height,
			rounds, reason, broken, max_depth, leaves, mean_leaf_depth
		FROM runs
		WHERE ? = '' OR sweep_id = ?
		ORDER BY rowid
	`
	rows, err := s.Query(query, sweepID, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %v", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var id, params string
		if err := rows.Scan(&id, &r.SweepID, &r.Model, &params, &r.Seed, &r.Width, &r.Height,
			&r.Rounds, &r.Reason, &r.Broken, &r.MaxDepth, &r.Leaves, &r.MeanLeafDepth); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if params != "" {
			if err := yaml.Unmarshal([]byte(params), &r.Params); err != nil {
				return nil, fmt.Errorf("run %s params: %w", id, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
