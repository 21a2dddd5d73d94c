/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"juryboard/internal/bootstrap"
	"juryboard/internal/errs"
	"juryboard/internal/usecase/auditconsole"
)

// auditCmd groups audit log inspection commands.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the reset audit log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print recent audit entries, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := svc.audits.Recent(cmd.Context(), limit)
		if err != nil {
			return errs.Wrap(err, "load audit entries")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tACTOR\tROLE\tROWS\tREASON\tAT")
		for _, entry := range entries {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%s\t%s\n",
				entry.AuditID, entry.ResetType, entry.InitiatedBy, entry.InitiatorRole,
				entry.VotesAffected, entry.Reason, entry.CreatedAt)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write audit output")
		}
		return nil
	}),
}

var auditConsoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive audit log console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		limit, _ := cmd.Flags().GetInt("limit")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model := auditconsole.NewModel(cmd.Context(), svc.audits, auditconsole.Options{
			Limit:           limit,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run audit console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditListCmd.Flags().Int("limit", 50, "Maximum entries to print")
	auditCmd.AddCommand(auditListCmd)

	auditConsoleCmd.Flags().Int("limit", 100, "Maximum entries to load")
	auditConsoleCmd.Flags().Duration("refresh-interval", 5*time.Second, "Reload interval")
	auditCmd.AddCommand(auditConsoleCmd)
}
