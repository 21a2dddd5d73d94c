/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"juryboard/internal/bootstrap"
	"juryboard/internal/errs"
	"juryboard/internal/usecase/backup"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore rows from a backup snapshot (all-or-nothing)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		snapshotUID, _ := cmd.Flags().GetString("snapshot")
		rawTarget, _ := cmd.Flags().GetString("target")

		target, err := backup.ParseRestoreTarget(rawTarget)
		if err != nil {
			return errs.Wrap(err, "parse restore target")
		}

		result, err := svc.backups.Restore(cmd.Context(), backup.RestoreInput{
			SnapshotUID: snapshotUID,
			Target:      target,
		})
		if err != nil {
			return errs.Wrap(err, "restore snapshot")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(),
			"restore committed snapshot=%s rows=%d evaluations=%d raw_votes=%d\n",
			result.SnapshotUID, result.RestoredRows, result.EvaluationRows, result.RawVoteRows,
		); err != nil {
			return errs.Wrap(err, "write restore output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().String("snapshot", "", "Snapshot UID to restore from")
	restoreCmd.Flags().String("target", "both", "What to restore: records, scores, or both")
	_ = restoreCmd.MarkFlagRequired("snapshot")
}
