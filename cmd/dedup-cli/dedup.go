package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"provider-matching-workers/internal/common/metrics"
	"provider-matching-workers/internal/models"
)

const cliTrigger = "cli"

func newPassCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "pass",
		Short: "Find and merge every duplicate group in the provider store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if dryRun {
				providers, err := a.stores.Store.ListProviders(cmd.Context())
				if err != nil {
					return fmt.Errorf("list providers: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), a.engines.Dedup.FindDuplicateGroups(providers))
			}

			start := time.Now()
			report, err := a.engines.Coordinator.RunPass(cmd.Context())
			if err != nil {
				metrics.ObserveDedupPass(cliTrigger, metrics.PassFailed, time.Since(start))
				return err
			}
			metrics.ObserveDedupPass(cliTrigger, metrics.PassOutcome(report.Errors), time.Since(start))
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list the duplicate groups a pass would merge")
	return cmd
}

func newMergeCmd() *cobra.Command {
	var primaryID string
	var duplicateIDs []string
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge duplicate providers into a primary record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if primaryID == "" || len(duplicateIDs) == 0 {
				return fmt.Errorf("--primary and --duplicates are required")
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.engines.Coordinator.Merge(cmd.Context(), primaryID, duplicateIDs)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("merge into %s failed: %s", primaryID, strings.Join(result.Errors, "; "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&primaryID, "primary", "", "id of the surviving provider")
	cmd.Flags().StringSliceVar(&duplicateIDs, "duplicates", nil, "comma-separated ids to merge into the primary")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check candidate providers against the store without writing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			candidates, err := readProviders(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			existing, err := a.stores.Store.ListProviders(cmd.Context())
			if err != nil {
				return fmt.Errorf("list providers: %w", err)
			}

			checks := make([]models.DuplicationCheck, 0, len(candidates))
			for _, c := range candidates {
				checks = append(checks, a.engines.Dedup.CheckAgainst(c, existing))
			}
			return printJSON(cmd.OutOrStdout(), checks)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON provider or array of providers (- for stdin)")
	return cmd
}
