package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one provenance record.
type Run struct {
	ID          string
	CreatedAt   time.Time
	InputPath   string
	InputSHA256 string
	Rows        int
	Events      int
	Dropped     int
	Converged   bool
	Iterations  int

	// GlobalPHPass is nil when the PH test did not run (e.g. the fit
	// failed to converge).
	GlobalPHPass *bool

	Artifacts []string
}

// NewRunID returns a time-ordered unique run identifier.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RecordRun inserts a run and its artifact list in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var phPass any
	if run.GlobalPHPass != nil {
		phPass = boolToInt(*run.GlobalPHPass)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at, input_path, input_sha256,
		                  rows, events, dropped, converged, iterations, global_ph_pass)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339),
		run.InputPath,
		run.InputSHA256,
		run.Rows,
		run.Events,
		run.Dropped,
		boolToInt(run.Converged),
		run.Iterations,
		phPass,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, path := range run.Artifacts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_artifacts (run_id, path) VALUES (?, ?)`,
			run.ID, path); err != nil {
			return fmt.Errorf("insert artifact %q: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
