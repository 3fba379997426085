package pipeline

import (
	"context"
	"log/slog"

	"tiersweep/internal/models"
	"tiersweep/internal/provider"
)

// Migrate issues one tier-change request per record, sequentially and in
// enumeration order. A failing object is recorded and the batch moves on;
// one object's failure never aborts the rest. Only context cancellation
// stops the loop early, and records not yet attempted are then reported as
// failed with the cancellation error so the audit trail accounts for every
// candidate.
//
// Succeeded records are re-snapshotted with the target tier, since that is
// what the post-migration audit should show.
func Migrate(ctx context.Context, ts provider.TierSetter, records []models.BlobRecord, req models.MigrationRequest, log *slog.Logger) (succeeded []models.BlobRecord, failed []models.MigrationFailure) {
	total := len(records)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			for _, rest := range records[i:] {
				failed = append(failed, models.MigrationFailure{Record: rest, Err: err})
			}
			log.Error("run cancelled mid-batch", "attempted", i, "total", total)
			return succeeded, failed
		}

		if err := ts.SetTier(ctx, rec.Container, rec.Name, req); err != nil {
			failed = append(failed, models.MigrationFailure{Record: rec, Err: err})
			log.Error("tier change failed", "blob", rec.Name, "error", err)
		} else {
			moved := rec
			moved.Tier = req.TargetTier
			succeeded = append(succeeded, moved)
			log.Debug("tier change succeeded", "blob", rec.Name, "tier", req.TargetTier)
		}
		log.Info("migration progress", "done", i+1, "total", total)
	}
	return succeeded, failed
}
