/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"juryboard/internal/bootstrap"
	"juryboard/internal/errs"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show reset statistics from the audit log",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		stats, err := svc.audits.Statistics(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "load audit statistics")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "total resets\t%d\n", stats.TotalResets)
		fmt.Fprintf(w, "last 30 days\t%d\n", stats.Recent30Days)
		fmt.Fprintf(w, "rows affected\t%d\n", stats.TotalRowsAffected)

		types := make([]string, 0, len(stats.ByType))
		for resetType := range stats.ByType {
			types = append(types, resetType)
		}
		sort.Strings(types)
		for _, resetType := range types {
			fmt.Fprintf(w, "  %s\t%d\n", resetType, stats.ByType[resetType])
		}

		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write stats output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
