package audit

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tiersweep/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := NewRecorder(t.TempDir(), nil, discardLogger())
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	return rec
}

func sampleRecord(name string) models.BlobRecord {
	return models.BlobRecord{
		Container:     "backups",
		Name:          name,
		Tier:          models.TierArchive,
		LastModified:  time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC),
		ContentLength: 2048,
		Rehydration:   models.RehydrationNone,
		ETag:          `"abc123"`,
		Tags:          map[string]string{"env": "prod", "app": "billing"},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse artifact: %v", err)
	}
	return rows
}

func TestRecordWritesArtifact(t *testing.T) {
	rec := testRecorder(t)
	batch := models.NewAuditBatch("run-1", models.PhaseDiscovered, []models.BlobRecord{
		sampleRecord("a"),
		sampleRecord("b"),
	})

	path, err := rec.Record(context.Background(), batch)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "discovered_") || !strings.HasSuffix(base, ".csv") {
		t.Fatalf("unexpected artifact name %q", base)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "container" || rows[0][1] != "name" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "a" || rows[2][1] != "b" {
		t.Fatal("rows must preserve batch order")
	}
	// Tag serialization is sorted by key for deterministic output.
	if got := rows[1][9]; got != "app=billing;env=prod" {
		t.Fatalf("unexpected tags column: %q", got)
	}
}

func TestRecordCountMatchesSucceededSet(t *testing.T) {
	rec := testRecorder(t)

	pre := models.NewAuditBatch("run-1", models.PhaseDiscovered, []models.BlobRecord{
		sampleRecord("a"), sampleRecord("b"), sampleRecord("c"),
	})
	prePath, err := rec.Record(context.Background(), pre)
	if err != nil {
		t.Fatalf("record pre: %v", err)
	}

	// Only two survived migration.
	post := models.NewAuditBatch("run-1", models.PhaseMigrated, []models.BlobRecord{
		sampleRecord("a"), sampleRecord("c"),
	})
	postPath, err := rec.Record(context.Background(), post)
	if err != nil {
		t.Fatalf("record post: %v", err)
	}

	if got := len(readCSV(t, postPath)) - 1; got != 2 {
		t.Fatalf("post artifact rows = %d, want 2", got)
	}
	if !post.CreatedAt.After(pre.CreatedAt) {
		t.Fatal("post batch must be created strictly after the pre batch")
	}
	if prePath == postPath {
		t.Fatal("phases must never share an artifact")
	}
}

func TestRecordEmptyBatch(t *testing.T) {
	rec := testRecorder(t)
	batch := models.NewAuditBatch("run-1", models.PhaseMigrated, nil)

	path, err := rec.Record(context.Background(), batch)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := len(readCSV(t, path)); got != 1 {
		t.Fatalf("empty batch should still produce a header-only artifact, got %d rows", got)
	}
}

func TestRecordLeavesNoTempFiles(t *testing.T) {
	rec := testRecorder(t)
	batch := models.NewAuditBatch("run-1", models.PhaseDiscovered, []models.BlobRecord{sampleRecord("a")})
	if _, err := rec.Record(context.Background(), batch); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := os.ReadDir(rec.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected exactly the artifact, got %v", names)
	}
}

func TestRecordCancelledContext(t *testing.T) {
	rec := testRecorder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rec.Record(ctx, models.NewAuditBatch("run-1", models.PhaseMigrated, nil))
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected *WriteError, got %T", err)
	}
}

func TestRecordUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewRecorder(dir, nil, discardLogger())
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err = rec.Record(context.Background(), models.NewAuditBatch("run-1", models.PhaseMigrated, nil))
	if err == nil {
		t.Fatal("expected write error for unwritable directory")
	}
}
