package ports

import (
	"context"

	"juryboard/internal/domain/jury"
)

// EvaluationFilter selects active rows. Zero-valued fields match all;
// supplied fields are ANDed.
type EvaluationFilter struct {
	CandidateID uint64
	ReviewerID  uint64
	Round       string
}

// Evaluation is one scored evaluation of one candidate by one reviewer
// for one round.
type Evaluation struct {
	EvaluationID uint64
	CandidateID  uint64
	ReviewerID   uint64
	Round        string
	Scores       jury.ScoreSet
	TotalScore   int
	Comments     string
	IsActive     bool
	CreatedAt    string
	UpdatedAt    string
	ResetAt      *string
	ResetBy      *uint64
}

type EvaluationCreate struct {
	CandidateID uint64
	ReviewerID  uint64
	Round       string
	Scores      jury.ScoreSet
	Comments    string
	CreatedAt   string
}

// RawVote is one per-criterion vote row; five are written per evaluation.
type RawVote struct {
	RawVoteID   uint64
	CandidateID uint64
	ReviewerID  uint64
	Round       string
	Criterion   string
	Score       int
	IsActive    bool
	CreatedAt   string
	ResetAt     *string
	ResetBy     *uint64
}

type RawVoteCreate struct {
	CandidateID uint64
	ReviewerID  uint64
	Round       string
	Criterion   string
	Score       int
	CreatedAt   string
}

// EvaluationRepository stores evaluation and raw vote rows with the
// active/inactive lifecycle. Mutating methods participate in the caller's
// transaction when one is present in the context; they never open their own.
type EvaluationRepository interface {
	FindActive(ctx context.Context, filter EvaluationFilter) ([]Evaluation, error)
	Insert(ctx context.Context, create EvaluationCreate) (Evaluation, error)
	UpdateScores(ctx context.Context, evaluationID uint64, scores jury.ScoreSet, comments string, updatedAt string) error

	// Deactivate flips is_active on all active rows matching filter and
	// stamps reset_at/reset_by. Returns the affected row count.
	Deactivate(ctx context.Context, filter EvaluationFilter, actorID uint64, resetAt string) (int64, error)

	// RetagRound re-labels all active evaluation and raw vote rows from
	// oldRound to newRound, counting evaluations only. Rows stay active;
	// this is the archival path of a phase transition, not a reset.
	RetagRound(ctx context.Context, oldRound string, newRound string) (int64, error)

	// Reactivate restores a previously deactivated row, or re-inserts it
	// when the original row no longer exists.
	Reactivate(ctx context.Context, row Evaluation) error

	FindActiveRawVotes(ctx context.Context, filter EvaluationFilter) ([]RawVote, error)
	InsertRawVotes(ctx context.Context, creates []RawVoteCreate) error
	UpdateRawVoteScores(ctx context.Context, filter EvaluationFilter, scores jury.ScoreSet) error
	DeactivateRawVotes(ctx context.Context, filter EvaluationFilter, actorID uint64, resetAt string) (int64, error)
	ReactivateRawVote(ctx context.Context, row RawVote) error

	CountActive(ctx context.Context, filter EvaluationFilter) (int64, error)
}
