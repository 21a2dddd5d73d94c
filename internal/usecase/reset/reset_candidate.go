package reset

import (
	"context"

	"juryboard/internal/domain/jury"
	"juryboard/internal/ports"
)

type CandidateResetInput struct {
	Request
	CandidateID uint64
}

// ResetByCandidate deactivates every active evaluation of one candidate,
// across all reviewers and rounds. Admin only.
func (s *Service) ResetByCandidate(ctx context.Context, input CandidateResetInput) (Result, error) {
	if input.CandidateID == 0 {
		return Result{}, jury.ErrCandidateRequired
	}

	candidateID := input.CandidateID

	return s.execute(ctx, operation{
		scope:           jury.ScopeByCandidate,
		req:             input.Request,
		target:          jury.ResetTarget{CandidateID: input.CandidateID},
		filter:          ports.EvaluationFilter{CandidateID: input.CandidateID},
		includeRawVotes: true,
		scopeContext: map[string]string{
			"candidate_id": formatID(input.CandidateID),
		},
		candidateID: &candidateID,
		notifyKind:  ports.NotifyCandidateReset,
	})
}
