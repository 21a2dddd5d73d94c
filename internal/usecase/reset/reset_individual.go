package reset

import (
	"context"
	"errors"

	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/ports"
)

type IndividualResetInput struct {
	Request
	CandidateID uint64
	ReviewerID  uint64
}

// ResetIndividual deactivates the one active evaluation of a candidate by
// a reviewer in the current round. This is the only scope a reviewer may
// invoke on their own record.
func (s *Service) ResetIndividual(ctx context.Context, input IndividualResetInput) (Result, error) {
	if input.CandidateID == 0 {
		return Result{}, jury.ErrCandidateRequired
	}
	if input.ReviewerID == 0 {
		return Result{}, jury.ErrReviewerRequired
	}

	round, err := s.currentRound(ctx)
	if err != nil {
		return Result{}, err
	}

	candidateID := input.CandidateID
	reviewerID := input.ReviewerID

	return s.execute(ctx, operation{
		scope: jury.ScopeIndividual,
		req:   input.Request,
		target: jury.ResetTarget{
			CandidateID: input.CandidateID,
			ReviewerID:  input.ReviewerID,
		},
		filter: ports.EvaluationFilter{
			CandidateID: input.CandidateID,
			ReviewerID:  input.ReviewerID,
			Round:       round,
		},
		includeRawVotes: true,
		scopeContext: map[string]string{
			"candidate_id": formatID(input.CandidateID),
			"round":        round,
		},
		candidateID: &candidateID,
		reviewerID:  &reviewerID,
		notifyKind:  ports.NotifyIndividualReset,
	})
}

func (s *Service) currentRound(ctx context.Context) (string, error) {
	if s.phase == nil {
		return "", errors.New("phase gate is required")
	}
	round, err := s.phase.CurrentRound(ctx)
	if err != nil {
		return "", errs.Wrap(err, "read current round")
	}
	return round, nil
}
