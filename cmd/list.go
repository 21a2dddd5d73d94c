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
	"juryboard/internal/ports"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active evaluations",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		candidateID, _ := cmd.Flags().GetUint64("candidate")
		reviewerID, _ := cmd.Flags().GetUint64("reviewer")
		round, _ := cmd.Flags().GetString("round")

		evaluations, err := svc.evaluations.ActiveEvaluations(cmd.Context(), ports.EvaluationFilter{
			CandidateID: candidateID,
			ReviewerID:  reviewerID,
			Round:       round,
		})
		if err != nil {
			return errs.Wrap(err, "list evaluations")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCANDIDATE\tREVIEWER\tROUND\tTOTAL\tUPDATED")
		for _, evaluation := range evaluations {
			fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%d\t%s\n",
				evaluation.EvaluationID, evaluation.CandidateID, evaluation.ReviewerID,
				evaluation.Round, evaluation.TotalScore, evaluation.UpdatedAt)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write list output")
		}

		if candidateID != 0 {
			count, err := svc.evaluations.CandidateActiveCount(cmd.Context(), candidateID)
			if err != nil {
				return errs.Wrap(err, "count candidate evaluations")
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "candidate %d active total: %d\n", candidateID, count); err != nil {
				return errs.Wrap(err, "write list output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Uint64("candidate", 0, "Filter by candidate ID")
	listCmd.Flags().Uint64("reviewer", 0, "Filter by reviewer ID")
	listCmd.Flags().String("round", "", "Filter by round")
}
