package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tiersweep/internal/models"
)

// RunSummary is one row of run history.
type RunSummary struct {
	ID          string           `json:"id"`
	Account     string           `json:"account"`
	Container   string           `json:"container"`
	TierFilter  models.Tier      `json:"tier_filter"`
	TargetTier  models.Tier      `json:"target_tier"`
	WindowStart time.Time        `json:"window_start"`
	WindowEnd   time.Time        `json:"window_end"`
	StartedAt   time.Time        `json:"started_at"`
	Outcome     string           `json:"outcome,omitempty"`
	Discovered  int              `json:"discovered"`
	Migrated    int              `json:"migrated"`
	Failed      int              `json:"failed"`
}

// BatchInfo describes one recorded audit batch.
type BatchInfo struct {
	Phase        models.Phase `json:"phase"`
	CreatedAt    time.Time    `json:"created_at"`
	ArtifactPath string       `json:"artifact_path"`
	RecordCount  int          `json:"record_count"`
}

// FailureInfo describes one object whose tier change failed.
type FailureInfo struct {
	Name  string `json:"name"`
	Tier  string `json:"tier"`
	Error string `json:"error"`
}

// RunDetail is the full history of one run.
type RunDetail struct {
	RunSummary
	Batches  []BatchInfo   `json:"batches"`
	Failures []FailureInfo `json:"failures,omitempty"`
}

// CreateRun registers a run before the pipeline executes.
func (s *Store) CreateRun(ctx context.Context, rc models.RunContext) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, account, container, tier_filter, target_tier, window_start, window_end, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.RunID, rc.Account, rc.Container,
		string(rc.Criteria.Tier), string(rc.Request.TargetTier),
		formatTime(rc.Criteria.Start), formatTime(rc.Criteria.End), formatTime(rc.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("create run %s: %w", rc.RunID, err)
	}
	return nil
}

// FinishRun records how a run ended.
func (s *Store) FinishRun(ctx context.Context, runID string, outcome models.RunOutcome) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET outcome = ?, discovered = ?, migrated = ?, failed = ? WHERE id = ?`,
		string(outcome.Kind), outcome.Discovered, outcome.Migrated, outcome.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// IndexBatch records one audit batch and its per-record rows.
func (s *Store) IndexBatch(ctx context.Context, batch models.AuditBatch, artifactPath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO run_batches (run_id, phase, created_at, artifact_path, record_count)
		VALUES (?, ?, ?, ?, ?)`,
		batch.RunID, string(batch.Phase), formatTime(batch.CreatedAt), artifactPath, len(batch.Records),
	); err != nil {
		return fmt.Errorf("index batch %s/%s: %w", batch.RunID, batch.Phase, err)
	}

	for _, rec := range batch.Records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_blobs (run_id, phase, container, name, tier, last_modified, content_length, etag)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			batch.RunID, string(batch.Phase), rec.Container, rec.Name,
			string(rec.Tier), formatTime(rec.LastModified), rec.ContentLength, rec.ETag,
		); err != nil {
			return fmt.Errorf("index blob %s/%s: %w", batch.RunID, rec.Name, err)
		}
	}

	return tx.Commit()
}

// IndexFailures records the failed set with the per-object error text.
func (s *Store) IndexFailures(ctx context.Context, runID string, failures []models.MigrationFailure) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range failures {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_blobs (run_id, phase, container, name, tier, last_modified, content_length, etag, error)
			VALUES (?, 'failed', ?, ?, ?, ?, ?, ?, ?)`,
			runID, f.Record.Container, f.Record.Name, string(f.Record.Tier),
			formatTime(f.Record.LastModified), f.Record.ContentLength, f.Record.ETag, f.Err.Error(),
		); err != nil {
			return fmt.Errorf("index failure %s/%s: %w", runID, f.Record.Name, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns run history, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account, container, tier_filter, target_tier, window_start, window_end,
		       started_at, COALESCE(outcome, ''), discovered, migrated, failed
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		summary, err := scanRunSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// GetRun returns one run with its batches and failures, or nil if unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*RunDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account, container, tier_filter, target_tier, window_start, window_end,
		       started_at, COALESCE(outcome, ''), discovered, migrated, failed
		FROM runs WHERE id = ?`, id)
	summary, err := scanRunSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	detail := &RunDetail{RunSummary: summary}

	batchRows, err := s.db.QueryContext(ctx, `
		SELECT phase, created_at, artifact_path, record_count
		FROM run_batches WHERE run_id = ? ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer batchRows.Close()
	for batchRows.Next() {
		var b BatchInfo
		var phase, createdAt string
		if err := batchRows.Scan(&phase, &createdAt, &b.ArtifactPath, &b.RecordCount); err != nil {
			return nil, err
		}
		b.Phase = models.Phase(phase)
		b.CreatedAt = parseTime(createdAt)
		detail.Batches = append(detail.Batches, b)
	}
	if err := batchRows.Err(); err != nil {
		return nil, err
	}

	failRows, err := s.db.QueryContext(ctx, `
		SELECT name, tier, COALESCE(error, '')
		FROM run_blobs WHERE run_id = ? AND phase = 'failed' ORDER BY rowid`, id)
	if err != nil {
		return nil, err
	}
	defer failRows.Close()
	for failRows.Next() {
		var f FailureInfo
		if err := failRows.Scan(&f.Name, &f.Tier, &f.Error); err != nil {
			return nil, err
		}
		detail.Failures = append(detail.Failures, f)
	}
	return detail, failRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunSummary(row rowScanner) (RunSummary, error) {
	var r RunSummary
	var tierFilter, targetTier, windowStart, windowEnd, startedAt string
	err := row.Scan(&r.ID, &r.Account, &r.Container, &tierFilter, &targetTier,
		&windowStart, &windowEnd, &startedAt, &r.Outcome, &r.Discovered, &r.Migrated, &r.Failed)
	if err != nil {
		return RunSummary{}, err
	}
	r.TierFilter = models.Tier(tierFilter)
	r.TargetTier = models.Tier(targetTier)
	r.WindowStart = parseTime(windowStart)
	r.WindowEnd = parseTime(windowEnd)
	r.StartedAt = parseTime(startedAt)
	return r, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
