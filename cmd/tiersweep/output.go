package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"tiersweep/internal/audit"
	"tiersweep/internal/models"
)

func writeJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeOutcome(outcome models.RunOutcome) error {
	switch outcome.Kind {
	case models.OutcomeNoCandidates:
		return writePlain("No candidates matched the tier and window; nothing to do.\n")
	case models.OutcomeDeclined:
		return writePlain("Cancelled by operator; no objects were modified.\n")
	}

	lines := []string{
		fmt.Sprintf("discovered: %d", outcome.Discovered),
		fmt.Sprintf("migrated: %d", outcome.Migrated),
		fmt.Sprintf("failed: %d", outcome.Failed),
	}
	if outcome.DiscoveredArtifact != "" {
		lines = append(lines, fmt.Sprintf("discovered_artifact: %s", outcome.DiscoveredArtifact))
	}
	if outcome.MigratedArtifact != "" {
		lines = append(lines, fmt.Sprintf("migrated_artifact: %s", outcome.MigratedArtifact))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeRunList(runs []audit.RunSummary) error {
	for _, run := range runs {
		if err := writePlain("%s\n", formatRunLine(run)); err != nil {
			return err
		}
	}
	return nil
}

func writeRunDetail(detail *audit.RunDetail) error {
	lines := []string{
		fmt.Sprintf("id: %s", detail.ID),
		fmt.Sprintf("account: %s", detail.Account),
		fmt.Sprintf("container: %s", detail.Container),
		fmt.Sprintf("tier: %s -> %s", detail.TierFilter, detail.TargetTier),
		fmt.Sprintf("window: %s .. %s", formatTime(detail.WindowStart), formatTime(detail.WindowEnd)),
		fmt.Sprintf("started_at: %s", formatTime(detail.StartedAt)),
		fmt.Sprintf("outcome: %s", detail.Outcome),
		fmt.Sprintf("discovered: %d, migrated: %d, failed: %d", detail.Discovered, detail.Migrated, detail.Failed),
	}

	if len(detail.Batches) > 0 {
		lines = append(lines, "batches:")
		for _, b := range detail.Batches {
			lines = append(lines, fmt.Sprintf("  - %s (%d records) %s", b.Phase, b.RecordCount, b.ArtifactPath))
		}
	}
	if len(detail.Failures) > 0 {
		lines = append(lines, "failures:")
		for _, f := range detail.Failures {
			lines = append(lines, fmt.Sprintf("  - %s: %s", f.Name, f.Error))
		}
	}

	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatRunLine(run audit.RunSummary) string {
	outcome := run.Outcome
	if outcome == "" {
		outcome = "incomplete"
	}
	return fmt.Sprintf("%s  %s  %s/%s  %s->%s  [%s] %d/%d migrated",
		run.ID, formatTime(run.StartedAt), run.Account, run.Container,
		run.TierFilter, run.TargetTier, outcome, run.Migrated, run.Discovered)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
