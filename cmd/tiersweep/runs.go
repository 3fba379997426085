package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tiersweep/internal/audit"
	"tiersweep/internal/config"
)

func newRunsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run history",
	}

	cmd.AddCommand(newRunsListCmd(cfg, jsonOutput))
	cmd.AddCommand(newRunsShowCmd(cfg, jsonOutput))
	return cmd
}

func newRunsListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := audit.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(runs)
			}
			return writeRunList(runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "limit results")
	return cmd
}

func newRunsShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its audit batches and failures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := audit.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer st.Close()

			detail, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if detail == nil {
				return fmt.Errorf("unknown run: %s", args[0])
			}
			if *jsonOutput {
				return writeJSON(detail)
			}
			return writeRunDetail(detail)
		},
	}
}
