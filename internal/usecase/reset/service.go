package reset

import (
	"context"
	"errors"
	"log/slog"

	"juryboard/internal/bootstrap/logging"
	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/ports"
	"juryboard/internal/usecase/cachekey"
)

// Snapshotter captures a pre-mutation backup inside the reset transaction.
// Implemented by the backup usecase; kept as a local interface so failure
// injection stays trivial in tests.
type Snapshotter interface {
	CaptureInTx(ctx context.Context, scope jury.ResetScope, filter ports.EvaluationFilter, reason string, actorID uint64, includeRawVotes bool, scopeContext map[string]string) (ports.BackupSnapshot, error)
}

// AuditAppender writes one audit entry inside the reset transaction.
type AuditAppender interface {
	AppendInTx(ctx context.Context, create ports.AuditEntryCreate) (uint64, error)
}

// Service is the reset engine: the only component authorized to deactivate
// evaluation rows. Every scope follows the same protocol — authorize, lock
// check, then one transaction of backup, mutation, audit.
type Service struct {
	evals     ports.EvaluationRepository
	phase     ports.PhaseGate
	uow       ports.UnitOfWork
	cache     ports.Cache
	notifier  ports.Notifier
	snapshots Snapshotter
	audits    AuditAppender
}

func NewService(
	evals ports.EvaluationRepository,
	phase ports.PhaseGate,
	uow ports.UnitOfWork,
	cache ports.Cache,
	notifier ports.Notifier,
	snapshots Snapshotter,
	audits AuditAppender,
) *Service {
	return &Service{
		evals:     evals,
		phase:     phase,
		uow:       uow,
		cache:     cache,
		notifier:  notifier,
		snapshots: snapshots,
		audits:    audits,
	}
}

// Request carries the actor and request metadata shared by every scope.
type Request struct {
	Actor     jury.Actor
	Reason    string
	Notify    bool
	IPAddress string
	UserAgent string
}

// Result reports a committed reset.
type Result struct {
	Scope        jury.ResetScope
	RowsAffected int64
	SnapshotUID  string
	AuditID      uint64
}

// operation is one scope's parameterization of the shared protocol.
type operation struct {
	scope           jury.ResetScope
	req             Request
	target          jury.ResetTarget
	filter          ports.EvaluationFilter
	includeRawVotes bool
	scopeContext    map[string]string
	candidateID     *uint64
	reviewerID      *uint64
	notifyKind      ports.NotificationKind

	// mutate applies the scope's row change and returns the affected count.
	// Nil means deactivation of the filter's evaluations and their raw votes.
	mutate func(txCtx context.Context, resetAt string) (int64, error)

	// postMutate runs inside the transaction after a non-zero mutation
	// (phase transition advances the round pointer here).
	postMutate func(txCtx context.Context) error
}

func (s *Service) checkWired() error {
	if s.evals == nil {
		return errors.New("evaluation repository is required")
	}
	if s.phase == nil {
		return errors.New("phase gate is required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	if s.snapshots == nil {
		return errors.New("snapshotter is required")
	}
	if s.audits == nil {
		return errors.New("audit appender is required")
	}
	return nil
}

// execute runs the reset protocol. Steps 1-2 (authorize, lock check) fail
// before any transaction exists; steps 3-7 share one transaction and any
// failure rolls the whole operation back; step 8 side effects run only
// after commit and can never fail the reset.
func (s *Service) execute(ctx context.Context, op operation) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, errs.Wrap(err, "check context")
	}
	if err := s.checkWired(); err != nil {
		return Result{}, err
	}

	if err := jury.Authorize(op.req.Actor, op.scope, op.target); err != nil {
		return Result{}, err
	}

	locked, err := s.phase.IsLocked(ctx)
	if err != nil {
		return Result{}, errs.Wrap(err, "check phase lock")
	}
	if locked {
		return Result{}, jury.ErrVotingLocked
	}

	resetAt := nowUTCString()

	var result Result
	var recipients []uint64

	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		snapshot, err := s.snapshots.CaptureInTx(txCtx, op.scope, op.filter, op.req.Reason, op.req.Actor.ID, op.includeRawVotes, op.scopeContext)
		if err != nil {
			return err
		}

		// Collect recipients before the rows change.
		affected, err := s.evals.FindActive(txCtx, op.filter)
		if err != nil {
			return errs.Wrap(err, "collect affected reviewers")
		}
		recipients = reviewerIDs(affected)

		count, err := s.applyMutation(txCtx, op, resetAt)
		if err != nil {
			return errs.Wrap(err, "apply reset mutation")
		}
		if count == 0 {
			// Rolling back also discards the snapshot: a backup that
			// documents no work must never be left committed.
			return jury.ErrNothingToReset
		}

		if op.postMutate != nil {
			if err := op.postMutate(txCtx); err != nil {
				return err
			}
		}

		auditID, err := s.audits.AppendInTx(txCtx, ports.AuditEntryCreate{
			ResetType:     string(op.scope),
			InitiatedBy:   op.req.Actor.ID,
			InitiatorRole: string(op.req.Actor.Role),
			CandidateID:   op.candidateID,
			ReviewerID:    op.reviewerID,
			VotesAffected: count,
			Reason:        op.req.Reason,
			IPAddress:     op.req.IPAddress,
			UserAgent:     op.req.UserAgent,
			CreatedAt:     resetAt,
		})
		if err != nil {
			return err
		}

		result = Result{
			Scope:        op.scope,
			RowsAffected: count,
			SnapshotUID:  snapshot.SnapshotUID,
			AuditID:      auditID,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.sideEffects(ctx, op, result, recipients, resetAt)
	return result, nil
}

func (s *Service) applyMutation(txCtx context.Context, op operation, resetAt string) (int64, error) {
	if op.mutate != nil {
		return op.mutate(txCtx, resetAt)
	}
	count, err := s.evals.Deactivate(txCtx, op.filter, op.req.Actor.ID, resetAt)
	if err != nil {
		return 0, err
	}
	// Raw votes share the evaluation's lifecycle: leaving them active
	// would double them up on the next submission for the same triple.
	// Only the evaluation count is reported.
	if _, err := s.evals.DeactivateRawVotes(txCtx, op.filter, op.req.Actor.ID, resetAt); err != nil {
		return 0, err
	}
	return count, nil
}

// sideEffects runs after commit, best effort. A failing notifier or cache
// cannot un-commit the reset; failures are logged and dropped.
func (s *Service) sideEffects(ctx context.Context, op operation, result Result, recipients []uint64, occurredAt string) {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.reset"),
		slog.String("scope", string(op.scope)),
	)

	if s.notifier != nil {
		if op.req.Notify && len(recipients) > 0 {
			templateContext := map[string]string{"reason": op.req.Reason}
			for key, value := range op.scopeContext {
				templateContext[key] = value
			}
			if err := s.notifier.Notify(ctx, op.notifyKind, recipients, templateContext); err != nil {
				logging.Warn(logCtx, "post-commit notification failed", slog.Any("err", errs.Loggable(err)))
			}
		}

		if err := s.notifier.PublishResetEvent(ctx, ports.ResetEvent{
			Scope:        string(op.scope),
			ActorID:      op.req.Actor.ID,
			RowsAffected: result.RowsAffected,
			SnapshotUID:  result.SnapshotUID,
			Reason:       op.req.Reason,
			OccurredAt:   occurredAt,
		}); err != nil {
			logging.Warn(logCtx, "reset event publish failed", slog.Any("err", errs.Loggable(err)))
		}
	}

	s.invalidateCachesBestEffort(ctx, op)
}

func (s *Service) invalidateCachesBestEffort(ctx context.Context, op operation) {
	if s.cache == nil {
		return
	}

	keys := []string{cachekey.ActiveTotal}
	if op.candidateID != nil {
		keys = append(keys, cachekey.CandidateCount(*op.candidateID))
	}
	if op.reviewerID != nil {
		keys = append(keys, cachekey.ReviewerCount(*op.reviewerID))
	}
	if op.filter.Round != "" {
		keys = append(keys, cachekey.RoundCount(op.filter.Round))
	}
	if newRound, ok := op.scopeContext["new_round"]; ok {
		keys = append(keys, cachekey.RoundCount(newRound))
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

func reviewerIDs(rows []ports.Evaluation) []uint64 {
	seen := make(map[uint64]struct{}, len(rows))
	out := make([]uint64, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ReviewerID]; ok {
			continue
		}
		seen[row.ReviewerID] = struct{}{}
		out = append(out, row.ReviewerID)
	}
	return out
}
