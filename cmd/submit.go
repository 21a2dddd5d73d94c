/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"juryboard/internal/bootstrap"
	"juryboard/internal/bootstrap/logging"
	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/usecase/evaluation"
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit or update an evaluation for the current round",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		candidateID, _ := cmd.Flags().GetUint64("candidate")
		reviewerID, _ := cmd.Flags().GetUint64("reviewer")
		rawScores, _ := cmd.Flags().GetString("scores")
		comments, _ := cmd.Flags().GetString("comments")

		scores, err := parseScoreList(rawScores)
		if err != nil {
			return errs.Wrap(err, "parse scores")
		}

		result, err := svc.evaluations.Submit(ctx, evaluation.SubmitInput{
			CandidateID: candidateID,
			ReviewerID:  reviewerID,
			Scores:      scores,
			Comments:    comments,
		})
		if err != nil {
			return errs.Wrap(err, "submit evaluation")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(),
			"evaluation recorded candidate=%d reviewer=%d round=%s total=%d\n",
			result.CandidateID, result.ReviewerID, result.Round, result.TotalScore,
		); err != nil {
			return errs.Wrap(err, "write submit output")
		}
		return nil
	}),
}

// parseScoreList parses a comma-separated list in criterion order:
// technique,interpretation,difficulty,presentation,overall.
func parseScoreList(raw string) (jury.ScoreSet, error) {
	var scores jury.ScoreSet
	parts := strings.Split(raw, ",")
	if len(parts) != len(scores) {
		return scores, fmt.Errorf("expected %d comma-separated scores, got %d", len(scores), len(parts))
	}
	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return scores, fmt.Errorf("score %q is not a number", part)
		}
		scores[i] = value
	}
	return scores, nil
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().Uint64("candidate", 0, "Candidate ID")
	submitCmd.Flags().Uint64("reviewer", 0, "Reviewer ID")
	submitCmd.Flags().String("scores", "", "Five comma-separated scores: technique,interpretation,difficulty,presentation,overall")
	submitCmd.Flags().String("comments", "", "Optional reviewer comments")
	_ = submitCmd.MarkFlagRequired("candidate")
	_ = submitCmd.MarkFlagRequired("reviewer")
	_ = submitCmd.MarkFlagRequired("scores")
}
