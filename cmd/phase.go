/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"juryboard/internal/bootstrap"
	"juryboard/internal/errs"
	"juryboard/internal/usecase/reset"
)

// phaseCmd groups round lifecycle operations.
var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Round lifecycle: advance, lock, unlock, show",
}

var phaseShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current round and lock state",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		round, err := svc.phase.CurrentRound(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "read current round")
		}
		locked, err := svc.phase.IsLocked(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "read lock state")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "round=%s locked=%t\n", round, locked); err != nil {
			return errs.Wrap(err, "write phase output")
		}
		return nil
	}),
}

var phaseAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Archive the current round and advance to a new one (admin)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		newRound, _ := cmd.Flags().GetString("new-round")

		result, err := svc.resets.PhaseTransition(cmd.Context(), reset.PhaseTransitionInput{
			Request:  resetRequestFromFlags(cmd),
			NewRound: newRound,
		})
		if err != nil {
			return errs.Wrap(err, "advance phase")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(),
			"phase advanced new_round=%s archived_rows=%d backup=%s audit_id=%d\n",
			newRound, result.RowsAffected, result.SnapshotUID, result.AuditID,
		); err != nil {
			return errs.Wrap(err, "write phase output")
		}
		return nil
	}),
}

var phaseLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock voting: submissions and resets are rejected while locked",
	RunE:  withApp(setLockedRun(true)),
}

var phaseUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock voting",
	RunE:  withApp(setLockedRun(false)),
}

func setLockedRun(locked bool) func(cmd *cobra.Command, app *bootstrap.App, svc *services) error {
	return func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		now := time.Now().UTC().Format(time.RFC3339Nano)
		if err := svc.phase.SetLocked(cmd.Context(), locked, now); err != nil {
			return errs.Wrap(err, "set lock state")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "voting locked=%t\n", locked); err != nil {
			return errs.Wrap(err, "write phase output")
		}
		return nil
	}
}

func init() {
	rootCmd.AddCommand(phaseCmd)
	phaseCmd.AddCommand(phaseShowCmd)

	phaseAdvanceCmd.Flags().Uint64("actor", 0, "Initiating actor ID")
	phaseAdvanceCmd.Flags().String("role", "admin", "Actor role")
	phaseAdvanceCmd.Flags().String("reason", "", "Reason recorded in the audit log")
	phaseAdvanceCmd.Flags().Bool("notify", false, "Notify affected reviewers after commit")
	phaseAdvanceCmd.Flags().String("new-round", "", "Name of the round to advance to")
	_ = phaseAdvanceCmd.MarkFlagRequired("actor")
	_ = phaseAdvanceCmd.MarkFlagRequired("new-round")
	phaseCmd.AddCommand(phaseAdvanceCmd)

	phaseCmd.AddCommand(phaseLockCmd)
	phaseCmd.AddCommand(phaseUnlockCmd)
}
