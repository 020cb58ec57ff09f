package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ListRuns returns the most recent runs, newest first, with their
// artifact lists attached. A non-positive limit returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT run_id, created_at, input_path, input_sha256,
		       rows, events, dropped, converged, iterations, global_ph_pass
		FROM runs
		ORDER BY created_at DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		var converged int
		var phPass sql.NullInt64
		if err := rows.Scan(&r.ID, &created, &r.InputPath, &r.InputSHA256,
			&r.Rows, &r.Events, &r.Dropped, &converged, &r.Iterations, &phPass); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", created, err)
		}
		r.Converged = converged == 1
		if phPass.Valid {
			v := phPass.Int64 == 1
			r.GlobalPHPass = &v
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		if err := s.loadArtifacts(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) loadArtifacts(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM run_artifacts WHERE run_id = ? ORDER BY path`, run.ID)
	if err != nil {
		return fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return fmt.Errorf("scan artifact: %w", err)
		}
		run.Artifacts = append(run.Artifacts, p)
	}
	return rows.Err()
}
