package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"reviewflow/internal/models"
)

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// EnsureSchema keeps a fresh database usable even if the operator forgot to
// run migrations.
func (r *RunRepo) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS pipeline_runs (
  run_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  stage TEXT NOT NULL,
  message TEXT NOT NULL DEFAULT '',
  error TEXT,
  summary JSONB,
  started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_user ON pipeline_runs(user_id, updated_at DESC);

CREATE TABLE IF NOT EXISTS labeled_reviews (
  run_id TEXT NOT NULL REFERENCES pipeline_runs(run_id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  homework TEXT NOT NULL,
  author TEXT NOT NULL,
  reviewer TEXT NOT NULL,
  round INT NOT NULL,
  feedback TEXT NOT NULL,
  relevance INT NOT NULL,
  concreteness INT NOT NULL,
  constructive INT NOT NULL,
  relevance_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
  concreteness_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
  constructive_confidence DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_labeled_reviews_run ON labeled_reviews(run_id, homework);
`
	if _, err := r.db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure pipeline schema: %w", err)
	}
	return nil
}

// UpsertRun replaces the stored state of a run in one statement so status
// readers never observe a half-written transition.
func (r *RunRepo) UpsertRun(ctx context.Context, run models.PipelineRun) error {
	var summaryJSON []byte
	if run.Summary != nil {
		summaryJSON, _ = json.Marshal(run.Summary)
	}
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO pipeline_runs (run_id, user_id, stage, message, error, summary, started_at, updated_at)
VALUES ($1, $2, $3, $4, NULLIF($5,''), $6::jsonb, $7, NOW())
ON CONFLICT (run_id) DO UPDATE SET
  stage = EXCLUDED.stage,
  message = EXCLUDED.message,
  error = EXCLUDED.error,
  summary = EXCLUDED.summary,
  updated_at = NOW()`,
		run.RunID, run.UserID, run.Stage, run.Message, run.Error, nullableJSON(summaryJSON), run.StartedAt)
	if err != nil {
		return fmt.Errorf("upsert pipeline run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently updated run for a user, or nil when
// the user has never started one.
func (r *RunRepo) LatestRun(ctx context.Context, userID string) (*models.PipelineRun, error) {
	var run models.PipelineRun
	var summaryJSON []byte
	err := r.db.Pool.QueryRow(ctx, `
SELECT run_id, user_id, stage, message, COALESCE(error,''), summary, started_at, updated_at
FROM pipeline_runs WHERE user_id=$1 ORDER BY updated_at DESC LIMIT 1`, userID).
		Scan(&run.RunID, &run.UserID, &run.Stage, &run.Message, &run.Error, &summaryJSON, &run.StartedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}
	if len(summaryJSON) > 0 {
		var summary models.RunSummary
		if jsonErr := json.Unmarshal(summaryJSON, &summary); jsonErr == nil {
			run.Summary = &summary
		}
	}
	return &run, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
