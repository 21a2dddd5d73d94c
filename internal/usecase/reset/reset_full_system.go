package reset

import (
	"context"

	"juryboard/internal/domain/jury"
	"juryboard/internal/ports"
)

type FullSystemResetInput struct {
	Request
	Confirm bool
}

// ResetFullSystem deactivates every active row in both the scored
// evaluation table and the raw vote table. The only scope with a mandatory
// reason, and it additionally requires an explicit confirmation flag.
func (s *Service) ResetFullSystem(ctx context.Context, input FullSystemResetInput) (Result, error) {
	if err := jury.ValidateFullSystem(input.Reason, input.Confirm); err != nil {
		return Result{}, err
	}

	return s.execute(ctx, operation{
		scope:           jury.ScopeFullSystem,
		req:             input.Request,
		target:          jury.ResetTarget{},
		filter:          ports.EvaluationFilter{},
		includeRawVotes: true,
		notifyKind:      ports.NotifyFullSystemReset,
		mutate: func(txCtx context.Context, resetAt string) (int64, error) {
			evalCount, err := s.evals.Deactivate(txCtx, ports.EvaluationFilter{}, input.Actor.ID, resetAt)
			if err != nil {
				return 0, err
			}
			voteCount, err := s.evals.DeactivateRawVotes(txCtx, ports.EvaluationFilter{}, input.Actor.ID, resetAt)
			if err != nil {
				return 0, err
			}
			return evalCount + voteCount, nil
		},
	})
}
