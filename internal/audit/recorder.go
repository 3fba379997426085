package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"tiersweep/internal/models"
)

const artifactTimeLayout = "20060102T150405Z"

// WriteError reports a failed audit artifact write. Losing the record of
// what a run changed is fatal for the migrated phase; the discovered phase
// is retried and then logged, since discovery is still visible in logs.
type WriteError struct {
	Phase models.Phase
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s audit artifact: %v", e.Phase, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Recorder persists audit batches: a write-once CSV artifact per phase under
// Dir, plus an index row set in the run-history store when one is attached.
type Recorder struct {
	dir   string
	store *Store
	log   *slog.Logger
}

// NewRecorder creates the audit directory if needed. store may be nil; the
// CSV artifacts are the durable evidence of record either way.
func NewRecorder(dir string, store *Store, log *slog.Logger) (*Recorder, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("audit directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{dir: abs, store: store, log: log}, nil
}

// Dir returns the absolute audit directory.
func (r *Recorder) Dir() string { return r.dir }

// Record writes one phase's batch as a timestamp-named CSV artifact. The
// file appears atomically (temp file + rename) so a crash never leaves a
// half-written artifact behind, and it is never appended to afterwards.
func (r *Recorder) Record(ctx context.Context, batch models.AuditBatch) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &WriteError{Phase: batch.Phase, Err: err}
	}

	path := filepath.Join(r.dir, artifactName(batch))
	if err := writeCSV(path, batch); err != nil {
		return "", &WriteError{Phase: batch.Phase, Err: err}
	}
	r.log.Debug("audit artifact written", "phase", batch.Phase, "path", path, "records", len(batch.Records))

	if r.store != nil {
		if err := r.store.IndexBatch(ctx, batch, path); err != nil {
			// The CSV on disk is the durable record; a failed index is noise.
			r.log.Error("run history index failed", "phase", batch.Phase, "error", err)
		}
	}
	return path, nil
}

// RecordFailures indexes the failed set into the run history. Best effort.
func (r *Recorder) RecordFailures(ctx context.Context, runID string, failures []models.MigrationFailure) {
	if r.store == nil || len(failures) == 0 {
		return
	}
	if err := r.store.IndexFailures(ctx, runID, failures); err != nil {
		r.log.Error("failed-set index failed", "run", runID, "error", err)
	}
}

func artifactName(batch models.AuditBatch) string {
	return fmt.Sprintf("%s_%s.csv", batch.Phase, batch.CreatedAt.UTC().Format(artifactTimeLayout))
}

var csvHeader = []string{
	"container", "name", "version_id", "tier", "last_modified", "last_accessed",
	"content_length", "rehydration_status", "etag", "tags",
}

func writeCSV(path string, batch models.AuditBatch) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range batch.Records {
		if err := w.Write(csvRow(rec)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func csvRow(rec models.BlobRecord) []string {
	lastAccessed := ""
	if rec.LastAccessed != nil {
		lastAccessed = rec.LastAccessed.UTC().Format(time.RFC3339)
	}
	lastModified := ""
	if !rec.LastModified.IsZero() {
		lastModified = rec.LastModified.UTC().Format(time.RFC3339)
	}
	return []string{
		rec.Container,
		rec.Name,
		rec.VersionID,
		string(rec.Tier),
		lastModified,
		lastAccessed,
		strconv.FormatInt(rec.ContentLength, 10),
		string(rec.Rehydration),
		rec.ETag,
		formatTags(rec.Tags),
	}
}

func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+tags[k])
	}
	return strings.Join(parts, ";")
}
