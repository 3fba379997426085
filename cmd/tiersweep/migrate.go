package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tiersweep/internal/audit"
	"tiersweep/internal/config"
	"tiersweep/internal/models"
	"tiersweep/internal/pipeline"
	"tiersweep/internal/plan"
	"tiersweep/internal/provider/s3blob"
)

// errPartialFailure marks a run that finished but left some objects behind.
// main maps it to its own exit code so callers can tell "retry the stragglers"
// from a fatal abort.
var errPartialFailure = errors.New("completed with partial failures")

func newMigrateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		account      string
		profile      string
		container    string
		tierName     string
		targetName   string
		newerThan    string
		olderThan    string
		priorityName string
		planPath     string
		auditDir     string
		yes          bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate blobs matching a tier and age window to another tier",
		Long: `Migrate enumerates the container, selects blobs in the given tier whose
last-modified time falls inside the window, records the discovered set to an
audit artifact, asks for confirmation, and then changes each blob's tier one
at a time. A failing blob is recorded and skipped; the batch never aborts for
one object.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if planPath != "" {
				p, err := plan.Load(planPath)
				if err != nil {
					return err
				}
				applyPlanValue(cmd, "account", &account, p.Account)
				applyPlanValue(cmd, "profile", &profile, p.Profile)
				applyPlanValue(cmd, "container", &container, p.Container)
				applyPlanValue(cmd, "tier", &tierName, p.Tier)
				applyPlanValue(cmd, "target-tier", &targetName, p.TargetTier)
				applyPlanValue(cmd, "newer-than", &newerThan, p.NewerThan)
				applyPlanValue(cmd, "older-than", &olderThan, p.OlderThan)
				applyPlanValue(cmd, "priority", &priorityName, p.Priority)
			}
			if account == "" {
				account = cfg.Account
			}
			if profile == "" {
				profile = cfg.Profile
			}
			if container == "" {
				container = cfg.Container
			}
			if account == "" {
				return fmt.Errorf("account is required (flag, plan, or config)")
			}
			if container == "" {
				return fmt.Errorf("container is required (flag, plan, or config)")
			}

			tier := models.ParseTier(tierName)
			if !tier.Valid() {
				return fmt.Errorf("invalid tier %q (want hot, cool, cold, or archive)", tierName)
			}
			target := models.ParseTier(targetName)
			if !target.Valid() {
				return fmt.Errorf("invalid target tier %q (want hot, cool, cold, or archive)", targetName)
			}
			priority, err := models.ParsePriority(priorityName)
			if err != nil {
				return err
			}
			start, end, err := parseWindow(newerThan, olderThan)
			if err != nil {
				return err
			}

			rc := models.RunContext{
				RunID:     uuid.NewString(),
				Account:   account,
				Profile:   profile,
				Container: container,
				Criteria:  models.TierFilterCriteria{Tier: tier, Start: start, End: end},
				Request:   models.MigrationRequest{TargetTier: target, Priority: priority},
				StartedAt: time.Now().UTC(),
			}
			log := slog.Default().With("run", rc.RunID)

			st, err := audit.Open(cfg.DBPath)
			if err != nil {
				// History is an index over the CSV artifacts, not the
				// evidence itself; run without it rather than abort.
				log.Warn("run history unavailable", "error", err)
				st = nil
			} else {
				defer st.Close()
			}

			if auditDir == "" {
				auditDir = cfg.AuditDir
			}
			recorder, err := audit.NewRecorder(auditDir, st, log)
			if err != nil {
				return err
			}

			client, err := s3blob.New(profile, s3blob.Options{
				ScopeRole:   cfg.ScopeRole,
				RestoreDays: cfg.RestoreDays,
				FetchTags:   cfg.FetchTags,
				Log:         log,
			})
			if err != nil {
				return err
			}

			var confirm pipeline.Confirmer = &pipeline.TerminalConfirmer{
				In:  cmd.InOrStdin(),
				Out: cmd.OutOrStdout(),
			}
			if yes {
				confirm = pipeline.PolicyConfirmer{Answer: true}
			}

			ctx := cmd.Context()
			if st != nil {
				if err := st.CreateRun(ctx, rc); err != nil {
					log.Warn("could not record run start", "error", err)
				}
			}

			outcome, err := pipeline.Run(ctx, pipeline.Deps{
				Session:  client,
				Lister:   client,
				Setter:   client,
				Recorder: recorder,
				Confirm:  confirm,
				Log:      log,
			}, rc)
			if err != nil {
				return err
			}

			if st != nil {
				if err := st.FinishRun(ctx, rc.RunID, outcome); err != nil {
					log.Warn("could not record run outcome", "error", err)
				}
			}

			if *jsonOutput {
				if err := writeJSON(outcome); err != nil {
					return err
				}
			} else if err := writeOutcome(outcome); err != nil {
				return err
			}

			if outcome.Kind == models.OutcomeCompletedWithErrors {
				return fmt.Errorf("%w: %d of %d objects failed", errPartialFailure, outcome.Failed, outcome.Discovered)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "provider account id the run must be scoped to")
	cmd.Flags().StringVar(&profile, "profile", "", "credential profile to authenticate with")
	cmd.Flags().StringVar(&container, "container", "", "container (bucket) to migrate")
	cmd.Flags().StringVar(&tierName, "tier", "archive", "current tier to select")
	cmd.Flags().StringVar(&targetName, "target-tier", "hot", "tier to migrate selected blobs to")
	cmd.Flags().StringVar(&newerThan, "newer-than", "", "window start, inclusive (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&olderThan, "older-than", "", "window end, inclusive (RFC 3339 or YYYY-MM-DD); defaults to now")
	cmd.Flags().StringVar(&priorityName, "priority", "standard", "rehydration priority when leaving archive (standard or high)")
	cmd.Flags().StringVar(&planPath, "plan", "", "YAML plan file; flags set on the command line win")
	cmd.Flags().StringVar(&auditDir, "audit-dir", "", "directory for audit artifacts")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")

	return cmd
}

// applyPlanValue fills dst from the plan unless the flag was set explicitly.
func applyPlanValue(cmd *cobra.Command, flag string, dst *string, value string) {
	if value == "" || cmd.Flags().Changed(flag) {
		return
	}
	*dst = value
}
