package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"tiersweep/internal/models"
	"tiersweep/internal/provider"
)

// newBlockedReader returns a reader whose Read never completes, for
// exercising cancellation while the gate waits on input.
func newBlockedReader() (io.Reader, io.Closer) {
	r, w := io.Pipe()
	return r, w
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustTime(t string) time.Time {
	parsed, err := time.Parse(time.RFC3339, t)
	if err != nil {
		panic(err)
	}
	return parsed
}

func record(name string, tier models.Tier, lastModified string) models.BlobRecord {
	rec := models.BlobRecord{
		Container:     "backups",
		Name:          name,
		Tier:          tier,
		ContentLength: 1024,
		Rehydration:   models.RehydrationNone,
	}
	if lastModified != "" {
		rec.LastModified = mustTime(lastModified)
	}
	return rec
}

type fakeSession struct {
	current func() (*provider.SessionInfo, error)
	login   func(profile string) error
	scope   func(account string) error

	logins []string
	scopes []string
}

func (f *fakeSession) CurrentSession(ctx context.Context) (*provider.SessionInfo, error) {
	return f.current()
}

func (f *fakeSession) Login(ctx context.Context, profile string) error {
	f.logins = append(f.logins, profile)
	if f.login != nil {
		return f.login(profile)
	}
	return nil
}

func (f *fakeSession) SetActiveScope(ctx context.Context, account string) error {
	f.scopes = append(f.scopes, account)
	if f.scope != nil {
		return f.scope(account)
	}
	return nil
}

// scopedSession is a fakeSession that always reports the given account.
func scopedSession(account string) *fakeSession {
	return &fakeSession{
		current: func() (*provider.SessionInfo, error) {
			return &provider.SessionInfo{Profile: "ops", Account: account}, nil
		},
	}
}

type fakeLister struct {
	records []models.BlobRecord
	err     error
}

func (f *fakeLister) ListBlobs(ctx context.Context, container string, tier models.Tier) ([]models.BlobRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeSetter struct {
	failOn map[string]error
	calls  []string
}

func (f *fakeSetter) SetTier(ctx context.Context, container, name string, req models.MigrationRequest) error {
	f.calls = append(f.calls, name)
	if err, ok := f.failOn[name]; ok {
		return err
	}
	return nil
}

type fakeRecorder struct {
	batches   []models.AuditBatch
	failures  []models.MigrationFailure
	failTimes map[models.Phase]int
}

func (f *fakeRecorder) Record(ctx context.Context, batch models.AuditBatch) (string, error) {
	if n := f.failTimes[batch.Phase]; n > 0 {
		f.failTimes[batch.Phase] = n - 1
		return "", &recordError{phase: batch.Phase}
	}
	f.batches = append(f.batches, batch)
	return "/audit/" + string(batch.Phase) + ".csv", nil
}

func (f *fakeRecorder) RecordFailures(ctx context.Context, runID string, failures []models.MigrationFailure) {
	f.failures = append(f.failures, failures...)
}

type recordError struct {
	phase models.Phase
}

func (e *recordError) Error() string { return "record failed for phase " + string(e.phase) }

type fakeConfirmer struct {
	answer  bool
	called  bool
	summary Summary
}

func (f *fakeConfirmer) Confirm(ctx context.Context, s Summary) (bool, error) {
	f.called = true
	f.summary = s
	return f.answer, nil
}
