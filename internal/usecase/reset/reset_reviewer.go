package reset

import (
	"context"

	"juryboard/internal/domain/jury"
	"juryboard/internal/ports"
)

type ReviewerResetInput struct {
	Request
	ReviewerID uint64
}

// ResetByReviewer deactivates every active evaluation submitted by one
// reviewer, across all candidates and rounds. Admin only — a reviewer
// cannot bulk-reset even their own records.
func (s *Service) ResetByReviewer(ctx context.Context, input ReviewerResetInput) (Result, error) {
	if input.ReviewerID == 0 {
		return Result{}, jury.ErrReviewerRequired
	}

	reviewerID := input.ReviewerID

	return s.execute(ctx, operation{
		scope:           jury.ScopeByReviewer,
		req:             input.Request,
		target:          jury.ResetTarget{ReviewerID: input.ReviewerID},
		filter:          ports.EvaluationFilter{ReviewerID: input.ReviewerID},
		includeRawVotes: true,
		scopeContext: map[string]string{
			"reviewer_id": formatID(input.ReviewerID),
		},
		reviewerID: &reviewerID,
		notifyKind: ports.NotifyReviewerReset,
	})
}
