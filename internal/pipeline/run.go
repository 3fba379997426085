// Package pipeline is the tier-migration core: session guard, window
// filter, confirmation gate, migration executor, and the Run orchestrator
// tying them together. Everything external (provider calls, audit
// persistence, the operator prompt) enters through interfaces.
package pipeline

import (
	"context"
	"log/slog"

	"tiersweep/internal/models"
	"tiersweep/internal/provider"
)

// Recorder persists audit batches and, best-effort, per-object failures.
type Recorder interface {
	// Record writes one phase's batch and returns the artifact path. The
	// write is all-or-nothing from the caller's perspective.
	Record(ctx context.Context, batch models.AuditBatch) (string, error)
	// RecordFailures indexes the failed set for the run history. Best
	// effort: failures of the index itself are logged, never escalated.
	RecordFailures(ctx context.Context, runID string, failures []models.MigrationFailure)
}

// Deps carries the collaborators a run needs. All are interfaces so tests
// substitute fakes.
type Deps struct {
	Session  provider.SessionClient
	Lister   provider.Lister
	Setter   provider.TierSetter
	Recorder Recorder
	Confirm  Confirmer
	Log      *slog.Logger
}

// Run executes one migration run end to end:
//
//	session guard → enumerate → filter → audit(discovered) → gate →
//	migrate → audit(migrated)
//
// Clean terminal states (no candidates, operator declined, partial
// failures) come back as the outcome kind; only conditions that compromise
// the whole run, such as wrong scope, an unusable listing, or a lost
// post-migration audit trail, are returned as errors.
func Run(ctx context.Context, deps Deps, rc models.RunContext) (models.RunOutcome, error) {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	if err := rc.Criteria.Validate(); err != nil {
		return models.RunOutcome{}, err
	}

	if err := EnsureSession(ctx, deps.Session, rc, log); err != nil {
		return models.RunOutcome{}, err
	}
	log.Info("session verified", "account", rc.Account, "container", rc.Container)

	records, err := deps.Lister.ListBlobs(ctx, rc.Container, rc.Criteria.Tier)
	if err != nil {
		return models.RunOutcome{}, &EnumerationError{Container: rc.Container, Err: err}
	}
	log.Debug("enumerated container", "count", len(records))

	candidates := FilterByWindow(records, rc.Criteria, log)
	if len(candidates) == 0 {
		log.Info("no candidates in window; nothing to do",
			"tier", rc.Criteria.Tier, "start", rc.Criteria.Start, "end", rc.Criteria.End)
		return models.RunOutcome{Kind: models.OutcomeNoCandidates}, nil
	}

	outcome := models.RunOutcome{Discovered: len(candidates)}

	prePath, err := deps.Recorder.Record(ctx, models.NewAuditBatch(rc.RunID, models.PhaseDiscovered, candidates))
	if err != nil {
		// Discovery is still visible in the logs, so the pre-phase artifact
		// gets one retry and the run carries on without it.
		log.Error("discovery audit write failed, retrying once", "error", err)
		prePath, err = deps.Recorder.Record(ctx, models.NewAuditBatch(rc.RunID, models.PhaseDiscovered, candidates))
		if err != nil {
			log.Error("discovery audit write failed again, continuing without artifact", "error", err)
			prePath = ""
		}
	}
	outcome.DiscoveredArtifact = prePath

	var totalBytes int64
	for _, rec := range candidates {
		totalBytes += rec.ContentLength
	}
	ok, err := deps.Confirm.Confirm(ctx, Summary{
		Count:        len(candidates),
		TotalBytes:   totalBytes,
		Account:      rc.Account,
		Container:    rc.Container,
		TargetTier:   rc.Request.TargetTier,
		ArtifactPath: prePath,
	})
	if err != nil {
		return models.RunOutcome{}, err
	}
	if !ok {
		log.Info("operator declined; no objects were modified")
		outcome.Kind = models.OutcomeDeclined
		return outcome, nil
	}

	succeeded, failed := Migrate(ctx, deps.Setter, candidates, rc.Request, log)
	outcome.Migrated = len(succeeded)
	outcome.Failed = len(failed)
	if len(failed) > 0 {
		deps.Recorder.RecordFailures(ctx, rc.RunID, failed)
	}

	// Losing the record of what was changed is fatal, unlike the pre phase.
	postPath, err := deps.Recorder.Record(ctx, models.NewAuditBatch(rc.RunID, models.PhaseMigrated, succeeded))
	if err != nil {
		return models.RunOutcome{}, err
	}
	outcome.MigratedArtifact = postPath

	if len(failed) > 0 {
		outcome.Kind = models.OutcomeCompletedWithErrors
	} else {
		outcome.Kind = models.OutcomeCompleted
	}
	return outcome, nil
}
