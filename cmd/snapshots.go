/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"juryboard/internal/bootstrap"
	"juryboard/internal/errs"
)

// snapshotsCmd represents the snapshots command
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List backup snapshots, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		limit, _ := cmd.Flags().GetInt("limit")

		snapshots, err := svc.backups.ListSnapshots(cmd.Context(), limit)
		if err != nil {
			return errs.Wrap(err, "load snapshots")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "UID\tSCOPE\tACTOR\tREASON\tAT")
		for _, snapshot := range snapshots {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				snapshot.SnapshotUID, snapshot.ScopeType,
				snapshot.CreatedBy, snapshot.Reason, snapshot.CreatedAt)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write snapshots output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.Flags().Int("limit", 50, "Maximum snapshots to list")
}
