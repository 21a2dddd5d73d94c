package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/ports"
)

// Service owns the snapshot-before-mutate guarantee and all-or-nothing
// restores.
type Service struct {
	evals     ports.EvaluationRepository
	snapshots ports.BackupRepository
	uow       ports.UnitOfWork
}

func NewService(evals ports.EvaluationRepository, snapshots ports.BackupRepository, uow ports.UnitOfWork) *Service {
	return &Service{
		evals:     evals,
		snapshots: snapshots,
		uow:       uow,
	}
}

// snapshotPayload is the serialized form of the rows a reset is about to
// affect. Stored as opaque JSON; only this package reads it back.
type snapshotPayload struct {
	Scope       string            `json:"scope"`
	Context     map[string]string `json:"context,omitempty"`
	Evaluations []evaluationRow   `json:"evaluations"`
	RawVotes    []rawVoteRow      `json:"raw_votes,omitempty"`
}

type evaluationRow struct {
	EvaluationID uint64 `json:"evaluation_id"`
	CandidateID  uint64 `json:"candidate_id"`
	ReviewerID   uint64 `json:"reviewer_id"`
	Round        string `json:"round"`
	Scores       [5]int `json:"scores"`
	TotalScore   int    `json:"total_score"`
	Comments     string `json:"comments"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type rawVoteRow struct {
	RawVoteID   uint64 `json:"raw_vote_id"`
	CandidateID uint64 `json:"candidate_id"`
	ReviewerID  uint64 `json:"reviewer_id"`
	Round       string `json:"round"`
	Criterion   string `json:"criterion"`
	Score       int    `json:"score"`
	CreatedAt   string `json:"created_at"`
}

// CaptureInTx snapshots every row the given filter matches, inside the
// caller's transaction, before the caller mutates those rows. Any failure
// maps to jury.ErrBackupFailed so the caller aborts the whole operation.
func (s *Service) CaptureInTx(ctx context.Context, scope jury.ResetScope, filter ports.EvaluationFilter, reason string, actorID uint64, includeRawVotes bool, scopeContext map[string]string) (ports.BackupSnapshot, error) {
	if ctx == nil {
		return ports.BackupSnapshot{}, errors.New("context is required")
	}
	if s.evals == nil || s.snapshots == nil {
		return ports.BackupSnapshot{}, errors.New("backup service is not wired")
	}

	evaluations, err := s.evals.FindActive(ctx, filter)
	if err != nil {
		return ports.BackupSnapshot{}, fmt.Errorf("%w: %w", jury.ErrBackupFailed, err)
	}

	payload := snapshotPayload{
		Scope:       string(scope),
		Context:     scopeContext,
		Evaluations: make([]evaluationRow, 0, len(evaluations)),
	}
	for _, eval := range evaluations {
		payload.Evaluations = append(payload.Evaluations, evaluationRow{
			EvaluationID: eval.EvaluationID,
			CandidateID:  eval.CandidateID,
			ReviewerID:   eval.ReviewerID,
			Round:        eval.Round,
			Scores:       eval.Scores,
			TotalScore:   eval.TotalScore,
			Comments:     eval.Comments,
			CreatedAt:    eval.CreatedAt,
			UpdatedAt:    eval.UpdatedAt,
		})
	}

	if includeRawVotes {
		rawVotes, err := s.evals.FindActiveRawVotes(ctx, filter)
		if err != nil {
			return ports.BackupSnapshot{}, fmt.Errorf("%w: %w", jury.ErrBackupFailed, err)
		}
		payload.RawVotes = make([]rawVoteRow, 0, len(rawVotes))
		for _, vote := range rawVotes {
			payload.RawVotes = append(payload.RawVotes, rawVoteRow{
				RawVoteID:   vote.RawVoteID,
				CandidateID: vote.CandidateID,
				ReviewerID:  vote.ReviewerID,
				Round:       vote.Round,
				Criterion:   vote.Criterion,
				Score:       vote.Score,
				CreatedAt:   vote.CreatedAt,
			})
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return ports.BackupSnapshot{}, fmt.Errorf("%w: %w", jury.ErrBackupFailed, err)
	}

	snapshot, err := s.snapshots.Insert(ctx, ports.BackupSnapshotCreate{
		SnapshotUID: uuid.NewString(),
		ScopeType:   string(scope),
		Payload:     string(encoded),
		Reason:      reason,
		CreatedBy:   actorID,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return ports.BackupSnapshot{}, fmt.Errorf("%w: %w", jury.ErrBackupFailed, err)
	}
	return snapshot, nil
}

// ListSnapshots returns snapshots newest first.
func (s *Service) ListSnapshots(ctx context.Context, limit int) ([]ports.BackupSnapshot, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.snapshots.List(ctx, limit)
}

// GetSnapshot returns one snapshot by its public uid.
func (s *Service) GetSnapshot(ctx context.Context, snapshotUID string) (ports.BackupSnapshot, error) {
	if ctx == nil {
		return ports.BackupSnapshot{}, errors.New("context is required")
	}
	uid := strings.TrimSpace(snapshotUID)
	if uid == "" {
		return ports.BackupSnapshot{}, jury.ErrSnapshotNotFound
	}
	return s.snapshots.Get(ctx, uid)
}
