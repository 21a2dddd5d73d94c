package evaluation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"juryboard/internal/errs"
	"juryboard/internal/ports"
	"juryboard/internal/usecase/cachekey"
)

const countCacheTTL = 5 * time.Minute

// ActiveEvaluations lists active rows matching the filter.
func (s *Service) ActiveEvaluations(ctx context.Context, filter ports.EvaluationFilter) ([]ports.Evaluation, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.evals == nil {
		return nil, errors.New("evaluation repository is required")
	}
	return s.evals.FindActive(ctx, filter)
}

// CandidateActiveCount reads the cached aggregate for a candidate,
// recomputing on a miss. Staleness is acceptable here: the reset engine
// invalidates these keys best effort after commit.
func (s *Service) CandidateActiveCount(ctx context.Context, candidateID uint64) (int64, error) {
	return s.cachedCount(ctx, cachekey.CandidateCount(candidateID), ports.EvaluationFilter{CandidateID: candidateID})
}

// ReviewerActiveCount reads the cached aggregate for a reviewer.
func (s *Service) ReviewerActiveCount(ctx context.Context, reviewerID uint64) (int64, error) {
	return s.cachedCount(ctx, cachekey.ReviewerCount(reviewerID), ports.EvaluationFilter{ReviewerID: reviewerID})
}

func (s *Service) cachedCount(ctx context.Context, key string, filter ports.EvaluationFilter) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(err, "check context")
	}
	if s.evals == nil {
		return 0, errors.New("evaluation repository is required")
	}

	if s.cache != nil {
		if raw, found, err := s.cache.Get(ctx, key); err == nil && found {
			if count, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.evals.CountActive(ctx, filter)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		// Best effort; a failed write only costs a recompute later.
		_ = s.cache.Set(ctx, key, strconv.FormatInt(count, 10), countCacheTTL)
	}
	return count, nil
}
