package reset

import (
	"context"
	"errors"
	"strings"

	"juryboard/internal/domain/jury"
	"juryboard/internal/ports"
)

type PhaseTransitionInput struct {
	Request
	NewRound string
}

// PhaseTransition archives the current round and advances the global round
// pointer. Unlike every other scope it does not deactivate: active rows of
// the old round are re-tagged under an archive label derived from the old
// round name and stay active. This asymmetry is deliberate — a transition
// is archival, not a reset — but it still runs the full protocol (backup,
// audit, lock check) so the old round remains restorable.
func (s *Service) PhaseTransition(ctx context.Context, input PhaseTransitionInput) (Result, error) {
	newRound := strings.TrimSpace(input.NewRound)
	if newRound == "" {
		return Result{}, errors.New("new round is required")
	}

	oldRound, err := s.currentRound(ctx)
	if err != nil {
		return Result{}, err
	}
	if newRound == oldRound {
		return Result{}, errors.New("new round must differ from the current round")
	}

	return s.execute(ctx, operation{
		scope:           jury.ScopePhaseTransition,
		req:             input.Request,
		target:          jury.ResetTarget{},
		filter:          ports.EvaluationFilter{Round: oldRound},
		includeRawVotes: true,
		scopeContext: map[string]string{
			"old_round": oldRound,
			"new_round": newRound,
		},
		notifyKind: ports.NotifyPhaseAdvanced,
		mutate: func(txCtx context.Context, _ string) (int64, error) {
			return s.evals.RetagRound(txCtx, oldRound, ArchivedRoundTag(oldRound))
		},
		postMutate: func(txCtx context.Context) error {
			return s.phase.AdvanceRound(txCtx, newRound, nowUTCString())
		},
	})
}
