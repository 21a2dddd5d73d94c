/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"juryboard/internal/bootstrap"
	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/usecase/reset"
)

// resetCmd groups the scoped reset subcommands.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset evaluations (individual, candidate, reviewer, full-system)",
}

func resetRequestFromFlags(cmd *cobra.Command) reset.Request {
	actorID, _ := cmd.Flags().GetUint64("actor")
	role, _ := cmd.Flags().GetString("role")
	reason, _ := cmd.Flags().GetString("reason")
	notify, _ := cmd.Flags().GetBool("notify")

	return reset.Request{
		Actor:     jury.Actor{ID: actorID, Role: jury.Role(role)},
		Reason:    reason,
		Notify:    notify,
		IPAddress: "cli",
		UserAgent: "juryboard-cli",
	}
}

func writeResetResult(cmd *cobra.Command, result reset.Result) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(),
		"reset committed scope=%s rows_affected=%d backup=%s audit_id=%d\n",
		result.Scope, result.RowsAffected, result.SnapshotUID, result.AuditID,
	); err != nil {
		return errs.Wrap(err, "write reset output")
	}
	return nil
}

var resetIndividualCmd = &cobra.Command{
	Use:   "individual",
	Short: "Reset one candidate/reviewer evaluation in the current round",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		candidateID, _ := cmd.Flags().GetUint64("candidate")
		reviewerID, _ := cmd.Flags().GetUint64("reviewer")

		result, err := svc.resets.ResetIndividual(cmd.Context(), reset.IndividualResetInput{
			Request:     resetRequestFromFlags(cmd),
			CandidateID: candidateID,
			ReviewerID:  reviewerID,
		})
		if err != nil {
			return errs.Wrap(err, "reset individual")
		}
		return writeResetResult(cmd, result)
	}),
}

var resetCandidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Reset all evaluations of one candidate (admin)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		candidateID, _ := cmd.Flags().GetUint64("candidate")

		result, err := svc.resets.ResetByCandidate(cmd.Context(), reset.CandidateResetInput{
			Request:     resetRequestFromFlags(cmd),
			CandidateID: candidateID,
		})
		if err != nil {
			return errs.Wrap(err, "reset by candidate")
		}
		return writeResetResult(cmd, result)
	}),
}

var resetReviewerCmd = &cobra.Command{
	Use:   "reviewer",
	Short: "Reset all evaluations by one reviewer (admin)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		reviewerID, _ := cmd.Flags().GetUint64("reviewer")

		result, err := svc.resets.ResetByReviewer(cmd.Context(), reset.ReviewerResetInput{
			Request:    resetRequestFromFlags(cmd),
			ReviewerID: reviewerID,
		})
		if err != nil {
			return errs.Wrap(err, "reset by reviewer")
		}
		return writeResetResult(cmd, result)
	}),
}

var resetFullSystemCmd = &cobra.Command{
	Use:     "full-system",
	Aliases: []string{"full"},
	Short:   "Reset every active evaluation and raw vote (admin, requires --confirm and --reason)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		confirm, _ := cmd.Flags().GetBool("confirm")

		result, err := svc.resets.ResetFullSystem(cmd.Context(), reset.FullSystemResetInput{
			Request: resetRequestFromFlags(cmd),
			Confirm: confirm,
		})
		if err != nil {
			return errs.Wrap(err, "reset full system")
		}
		return writeResetResult(cmd, result)
	}),
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.PersistentFlags().Uint64("actor", 0, "Initiating actor ID")
	resetCmd.PersistentFlags().String("role", string(jury.RoleAdmin), "Actor role (admin or reviewer)")
	resetCmd.PersistentFlags().String("reason", "", "Reason recorded in the audit log")
	resetCmd.PersistentFlags().Bool("notify", false, "Notify affected reviewers after commit")
	_ = resetCmd.MarkPersistentFlagRequired("actor")

	resetIndividualCmd.Flags().Uint64("candidate", 0, "Candidate ID")
	resetIndividualCmd.Flags().Uint64("reviewer", 0, "Reviewer ID")
	_ = resetIndividualCmd.MarkFlagRequired("candidate")
	_ = resetIndividualCmd.MarkFlagRequired("reviewer")
	resetCmd.AddCommand(resetIndividualCmd)

	resetCandidateCmd.Flags().Uint64("candidate", 0, "Candidate ID")
	_ = resetCandidateCmd.MarkFlagRequired("candidate")
	resetCmd.AddCommand(resetCandidateCmd)

	resetReviewerCmd.Flags().Uint64("reviewer", 0, "Reviewer ID")
	_ = resetReviewerCmd.MarkFlagRequired("reviewer")
	resetCmd.AddCommand(resetReviewerCmd)

	resetFullSystemCmd.Flags().Bool("confirm", false, "Explicit confirmation for the destructive scope")
	resetCmd.AddCommand(resetFullSystemCmd)
}
