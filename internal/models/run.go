package models

import (
	"fmt"
	"time"
)

// TierFilterCriteria selects blobs by current tier and an inclusive
// last-modified window.
type TierFilterCriteria struct {
	Tier  Tier      `json:"tier"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate rejects criteria that cannot select anything sensible. This runs
// before any provider call is made.
func (c TierFilterCriteria) Validate() error {
	if !c.Tier.Valid() {
		return fmt.Errorf("tier filter %q is not a concrete tier", c.Tier)
	}
	if c.Start.After(c.End) {
		return fmt.Errorf("window start %s is after end %s",
			c.Start.Format(time.RFC3339), c.End.Format(time.RFC3339))
	}
	return nil
}

// MigrationRequest describes the tier transition to apply to each candidate.
// Priority only matters for objects leaving the archive tier.
type MigrationRequest struct {
	TargetTier Tier     `json:"target_tier"`
	Priority   Priority `json:"priority"`
}

// RunContext is the full configuration of one run. It is built once before
// the session guard executes, read-only afterwards, and discarded at process
// exit; only the audit batches and logs outlive it.
type RunContext struct {
	RunID     string             `json:"run_id"`
	Account   string             `json:"account"`
	Profile   string             `json:"profile,omitempty"`
	Container string             `json:"container"`
	Criteria  TierFilterCriteria `json:"criteria"`
	Request   MigrationRequest   `json:"request"`
	StartedAt time.Time          `json:"started_at"`
}

// OutcomeKind classifies how a run ended. Fatal conditions are reported as
// errors, not outcome kinds; every kind here is a clean exit.
type OutcomeKind string

const (
	OutcomeCompleted           OutcomeKind = "completed"
	OutcomeCompletedWithErrors OutcomeKind = "completed_with_errors"
	OutcomeNoCandidates        OutcomeKind = "no_candidates"
	OutcomeDeclined            OutcomeKind = "declined"
)

// RunOutcome summarizes a finished run.
type RunOutcome struct {
	Kind               OutcomeKind `json:"kind"`
	Discovered         int         `json:"discovered"`
	Migrated           int         `json:"migrated"`
	Failed             int         `json:"failed"`
	DiscoveredArtifact string      `json:"discovered_artifact,omitempty"`
	MigratedArtifact   string      `json:"migrated_artifact,omitempty"`
}
