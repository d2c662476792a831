package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nmsmc/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale work directories",
		Long: `Remove work directories under paths.staging_dir that are older than
--max-age (default build.stale_after_hours). Directories held by a running
build are locked and always skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			age := maxAge
			if !cmd.Flags().Changed("max-age") {
				age = cfg.StaleAfter()
			}
			out := cmd.OutOrStdout()

			if dryRun {
				dirs, err := staging.ListDirectories(cfg.Paths.StagingDir)
				if err != nil {
					return fmt.Errorf("list work directories: %w", err)
				}
				cutoff := time.Now().Add(-age)
				rows := make([][]string, 0, len(dirs))
				for _, dir := range dirs {
					action := "keep"
					switch {
					case dir.Locked:
						action = "locked"
					case dir.ModTime.Before(cutoff):
						action = "remove"
					}
					rows = append(rows, []string{
						dir.Name,
						formatDuration(time.Since(dir.ModTime)),
						formatBytes(dir.Size),
						action,
					})
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No work directories found")
					return nil
				}
				fmt.Fprint(out, renderTable(
					[]string{"Directory", "Age", "Size", "Action"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, age, logger)
			fmt.Fprintf(out, "Removed %d, skipped %d locked\n", len(result.Removed), len(result.Skipped))
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", e.Path, e.Error)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("could not remove %d work director%s", len(result.Errors), pluralY(len(result.Errors)))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 24*time.Hour, "Remove directories older than this")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List directories and what would happen without removing anything")
	return cmd
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
