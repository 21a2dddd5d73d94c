package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"juryboard/internal/bootstrap/logging"
	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/ports"
	"juryboard/internal/usecase/cachekey"
)

// Service is the reviewer submission path. It may only insert or update an
// active row for a reviewer's own triple; flipping is_active is the reset
// engine's exclusive privilege.
type Service struct {
	evals ports.EvaluationRepository
	phase ports.PhaseGate
	uow   ports.UnitOfWork
	cache ports.Cache
}

func NewService(evals ports.EvaluationRepository, phase ports.PhaseGate, uow ports.UnitOfWork, cache ports.Cache) *Service {
	return &Service{
		evals: evals,
		phase: phase,
		uow:   uow,
		cache: cache,
	}
}

type SubmitInput struct {
	CandidateID uint64
	ReviewerID  uint64
	Scores      jury.ScoreSet
	Comments    string
}

// Submit records an evaluation for the current round. A re-submission for
// the same triple updates the existing active row, keeping the
// one-active-row-per-triple invariant.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (ports.Evaluation, error) {
	if ctx == nil {
		return ports.Evaluation{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Evaluation{}, errs.Wrap(err, "check context")
	}
	if s.evals == nil || s.phase == nil || s.uow == nil {
		return ports.Evaluation{}, errors.New("evaluation service is not wired")
	}

	if input.CandidateID == 0 {
		return ports.Evaluation{}, jury.ErrCandidateRequired
	}
	if input.ReviewerID == 0 {
		return ports.Evaluation{}, jury.ErrReviewerRequired
	}
	if err := input.Scores.Validate(); err != nil {
		return ports.Evaluation{}, err
	}

	locked, err := s.phase.IsLocked(ctx)
	if err != nil {
		return ports.Evaluation{}, errs.Wrap(err, "check phase lock")
	}
	if locked {
		return ports.Evaluation{}, jury.ErrVotingLocked
	}

	round, err := s.phase.CurrentRound(ctx)
	if err != nil {
		return ports.Evaluation{}, errs.Wrap(err, "read current round")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	filter := ports.EvaluationFilter{
		CandidateID: input.CandidateID,
		ReviewerID:  input.ReviewerID,
		Round:       round,
	}

	var result ports.Evaluation
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.evals.FindActive(txCtx, filter)
		if err != nil {
			return err
		}

		switch len(existing) {
		case 0:
			created, err := s.evals.Insert(txCtx, ports.EvaluationCreate{
				CandidateID: input.CandidateID,
				ReviewerID:  input.ReviewerID,
				Round:       round,
				Scores:      input.Scores,
				Comments:    input.Comments,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}

			creates := make([]ports.RawVoteCreate, 0, jury.CriterionCount)
			for i, criterion := range jury.CriterionNames {
				creates = append(creates, ports.RawVoteCreate{
					CandidateID: input.CandidateID,
					ReviewerID:  input.ReviewerID,
					Round:       round,
					Criterion:   criterion,
					Score:       input.Scores[i],
					CreatedAt:   now,
				})
			}
			if err := s.evals.InsertRawVotes(txCtx, creates); err != nil {
				return err
			}

			result = created
			return nil
		case 1:
			if err := s.evals.UpdateScores(txCtx, existing[0].EvaluationID, input.Scores, input.Comments, now); err != nil {
				return err
			}
			if err := s.evals.UpdateRawVoteScores(txCtx, filter, input.Scores); err != nil {
				return err
			}

			result = existing[0]
			result.Scores = input.Scores
			result.TotalScore = input.Scores.Total()
			result.Comments = input.Comments
			result.UpdatedAt = now
			return nil
		default:
			return fmt.Errorf("invariant violated: %d active rows for candidate %d reviewer %d round %s",
				len(existing), input.CandidateID, input.ReviewerID, round)
		}
	})
	if err != nil {
		return ports.Evaluation{}, err
	}

	s.dropCacheBestEffort(ctx,
		cachekey.ActiveTotal,
		cachekey.CandidateCount(input.CandidateID),
		cachekey.ReviewerCount(input.ReviewerID),
		cachekey.RoundCount(round),
	)
	return result, nil
}

func (s *Service) dropCacheBestEffort(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			logging.Warn(ctx, "cache invalidation failed",
				slog.String("key", key),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
}
