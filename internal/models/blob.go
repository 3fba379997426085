package models

import "time"

// BlobRecord is an immutable snapshot of one stored object, captured at
// enumeration time. Records are built from provider responses only; nothing
// else constructs them, and they do not track live provider state after
// capture.
type BlobRecord struct {
	Container     string            `json:"container"`
	Name          string            `json:"name"`
	VersionID     string            `json:"version_id,omitempty"`
	Tier          Tier              `json:"tier"`
	LastModified  time.Time         `json:"last_modified"`
	LastAccessed  *time.Time        `json:"last_accessed,omitempty"`
	ContentLength int64             `json:"content_length"`
	Rehydration   RehydrationStatus `json:"rehydration_status"`
	ETag          string            `json:"etag,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
}

// Phase tags an audit batch with the pipeline stage that produced it.
type Phase string

const (
	PhaseDiscovered Phase = "discovered"
	PhaseMigrated   Phase = "migrated"
)

// AuditBatch is the write-once record of what a run phase saw or changed.
// Record order matches enumeration order so audit output is deterministic.
type AuditBatch struct {
	RunID     string       `json:"run_id"`
	Phase     Phase        `json:"phase"`
	CreatedAt time.Time    `json:"created_at"`
	Records   []BlobRecord `json:"records"`
}

// NewAuditBatch stamps a batch for the given phase. The batch is never
// mutated after this point.
func NewAuditBatch(runID string, phase Phase, records []BlobRecord) AuditBatch {
	return AuditBatch{
		RunID:     runID,
		Phase:     phase,
		CreatedAt: time.Now().UTC(),
		Records:   records,
	}
}

// MigrationFailure pairs a record with the reason its tier change failed.
type MigrationFailure struct {
	Record BlobRecord
	Err    error
}
