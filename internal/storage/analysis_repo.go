package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"scholarnet/internal/models"
	"scholarnet/internal/util"

	"github.com/jackc/pgx/v5"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// AnalysisRepo archives finished analysis reports. Nothing here is read back
// into the graph engine.
type AnalysisRepo struct {
	db *DB

	schemaMu       sync.Mutex
	schemaPrepared bool
}

func NewAnalysisRepo(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

func (r *AnalysisRepo) ensureSchema(ctx context.Context) error {
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()

	if r.schemaPrepared {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS analysis_runs (
  run_id UUID PRIMARY KEY,
  status TEXT NOT NULL CHECK (status IN ('pending','running','completed','failed')),
  document_count INT NOT NULL DEFAULT 0,
  workflow_id TEXT,
  fail_reason TEXT,
  result JSONB,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_analysis_runs_created ON analysis_runs(created_at DESC);
`
	if _, err := r.db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure analysis schema: %w", err)
	}
	r.schemaPrepared = true
	return nil
}

func (r *AnalysisRepo) CreateRun(ctx context.Context, runID, workflowID string, documentCount int) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO analysis_runs (run_id, status, document_count, workflow_id)
VALUES ($1::uuid, 'pending', $2, NULLIF($3,''))`, runID, documentCount, workflowID)
	if err != nil {
		return fmt.Errorf("create analysis run: %w", err)
	}
	return nil
}

// UpdateRunStatus moves a run to status. failReason is stored only when non-empty.
func (r *AnalysisRepo) UpdateRunStatus(ctx context.Context, runID, status, failReason string) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE analysis_runs SET status=$2, fail_reason=NULLIF($3,''), updated_at=NOW()
WHERE run_id=$1::uuid`, runID, status, failReason)
	if err != nil {
		return fmt.Errorf("update analysis run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update analysis run %s: %w", runID, util.ErrRunNotFound)
	}
	return nil
}

// SaveResult stores the report and marks the run completed.
func (r *AnalysisRepo) SaveResult(ctx context.Context, runID string, result any) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE analysis_runs SET result=$2::jsonb, status='completed', fail_reason=NULL, updated_at=NOW()
WHERE run_id=$1::uuid`, runID, string(b))
	if err != nil {
		return fmt.Errorf("save analysis result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save analysis result %s: %w", runID, util.ErrRunNotFound)
	}
	return nil
}

func (r *AnalysisRepo) GetRun(ctx context.Context, runID string) (models.AnalysisRun, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return models.AnalysisRun{}, err
	}
	var run models.AnalysisRun
	var result []byte
	err := r.db.Pool.QueryRow(ctx, `
SELECT run_id::text, status, document_count, COALESCE(workflow_id,''), COALESCE(fail_reason,''), result, created_at, updated_at
FROM analysis_runs WHERE run_id=$1::uuid`, runID).Scan(
		&run.RunID, &run.Status, &run.DocumentCount, &run.WorkflowID, &run.FailReason, &result, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AnalysisRun{}, fmt.Errorf("get analysis run %s: %w", runID, util.ErrRunNotFound)
	}
	if err != nil {
		return models.AnalysisRun{}, fmt.Errorf("get analysis run: %w", err)
	}
	if len(result) > 0 {
		run.Result = json.RawMessage(result)
	}
	return run, nil
}

// ListRuns returns the most recent runs without their result payloads.
func (r *AnalysisRepo) ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT run_id::text, status, document_count, COALESCE(workflow_id,''), COALESCE(fail_reason,''), created_at, updated_at
FROM analysis_runs ORDER BY created_at DESC LIMIT $1`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list analysis runs: %w", err)
	}
	defer rows.Close()

	out := make([]models.AnalysisRun, 0)
	for rows.Next() {
		var run models.AnalysisRun
		if err := rows.Scan(&run.RunID, &run.Status, &run.DocumentCount, &run.WorkflowID, &run.FailReason, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis runs: %w", err)
	}
	return out, nil
}

// listLimit maps a non-positive limit to DefaultListLimit and caps it at MaxListLimit.
func listLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
