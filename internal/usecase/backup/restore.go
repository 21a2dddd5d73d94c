package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/ports"
)

// RestoreTarget selects what a restore re-activates.
type RestoreTarget string

const (
	RestoreRecords RestoreTarget = "records"
	RestoreScores  RestoreTarget = "scores"
	RestoreBoth    RestoreTarget = "both"
)

// ParseRestoreTarget normalizes a target string; empty means both.
func ParseRestoreTarget(raw string) (RestoreTarget, error) {
	target := RestoreTarget(strings.ToLower(strings.TrimSpace(raw)))
	switch target {
	case "":
		return RestoreBoth, nil
	case RestoreRecords, RestoreScores, RestoreBoth:
		return target, nil
	default:
		return "", fmt.Errorf("invalid restore target %q (records, scores, both)", raw)
	}
}

type RestoreInput struct {
	SnapshotUID string
	Target      RestoreTarget
}

type RestoreResult struct {
	SnapshotUID    string
	RestoredRows   int64
	EvaluationRows int64
	RawVoteRows    int64
}

// Restore re-activates the rows captured in a snapshot, all or nothing.
// A conflicting active row for any triple aborts the whole restore with
// jury.ErrRestoreConflict; no partial restore is ever committed.
func (s *Service) Restore(ctx context.Context, input RestoreInput) (RestoreResult, error) {
	if ctx == nil {
		return RestoreResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return RestoreResult{}, errs.Wrap(err, "check context")
	}
	if s.evals == nil || s.snapshots == nil || s.uow == nil {
		return RestoreResult{}, errors.New("backup service is not wired")
	}

	target := input.Target
	if target == "" {
		target = RestoreBoth
	}

	snapshot, err := s.snapshots.Get(ctx, strings.TrimSpace(input.SnapshotUID))
	if err != nil {
		return RestoreResult{}, err
	}

	var payload snapshotPayload
	if err := json.Unmarshal([]byte(snapshot.Payload), &payload); err != nil {
		return RestoreResult{}, errs.Wrap(err, "decode snapshot payload")
	}

	result := RestoreResult{SnapshotUID: snapshot.SnapshotUID}

	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if target == RestoreRecords || target == RestoreBoth {
			restored, err := s.restoreEvaluations(txCtx, payload.Evaluations)
			if err != nil {
				return err
			}
			result.EvaluationRows = restored
		}

		if target == RestoreScores || target == RestoreBoth {
			restored, err := s.restoreRawVotes(txCtx, payload.RawVotes)
			if err != nil {
				return err
			}
			result.RawVoteRows = restored
		}

		return nil
	})
	if err != nil {
		return RestoreResult{}, err
	}

	result.RestoredRows = result.EvaluationRows + result.RawVoteRows
	return result, nil
}

func (s *Service) restoreEvaluations(ctx context.Context, rows []evaluationRow) (int64, error) {
	var restored int64
	for _, row := range rows {
		filter := ports.EvaluationFilter{
			CandidateID: row.CandidateID,
			ReviewerID:  row.ReviewerID,
			Round:       row.Round,
		}
		count, err := s.evals.CountActive(ctx, filter)
		if err != nil {
			return 0, err
		}
		if count > 0 {
			return 0, fmt.Errorf("%w: candidate %d reviewer %d round %s",
				jury.ErrRestoreConflict, row.CandidateID, row.ReviewerID, row.Round)
		}

		if err := s.evals.Reactivate(ctx, ports.Evaluation{
			EvaluationID: row.EvaluationID,
			CandidateID:  row.CandidateID,
			ReviewerID:   row.ReviewerID,
			Round:        row.Round,
			Scores:       row.Scores,
			TotalScore:   row.TotalScore,
			Comments:     row.Comments,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		}); err != nil {
			return 0, err
		}
		restored++
	}
	return restored, nil
}

func (s *Service) restoreRawVotes(ctx context.Context, rows []rawVoteRow) (int64, error) {
	// Conflict checking is per triple: one lingering active vote row for a
	// triple blocks the whole restore.
	checked := make(map[ports.EvaluationFilter]struct{}, len(rows))

	var restored int64
	for _, row := range rows {
		filter := ports.EvaluationFilter{
			CandidateID: row.CandidateID,
			ReviewerID:  row.ReviewerID,
			Round:       row.Round,
		}
		if _, ok := checked[filter]; !ok {
			active, err := s.evals.FindActiveRawVotes(ctx, filter)
			if err != nil {
				return 0, err
			}
			if len(active) > 0 {
				return 0, fmt.Errorf("%w: raw votes for candidate %d reviewer %d round %s",
					jury.ErrRestoreConflict, row.CandidateID, row.ReviewerID, row.Round)
			}
			checked[filter] = struct{}{}
		}

		if err := s.evals.ReactivateRawVote(ctx, ports.RawVote{
			RawVoteID:   row.RawVoteID,
			CandidateID: row.CandidateID,
			ReviewerID:  row.ReviewerID,
			Round:       row.Round,
			Criterion:   row.Criterion,
			Score:       row.Score,
			CreatedAt:   row.CreatedAt,
		}); err != nil {
			return 0, err
		}
		restored++
	}
	return restored, nil
}
