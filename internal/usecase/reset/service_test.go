package reset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"juryboard/internal/domain/jury"
	cacheinfra "juryboard/internal/infrastructure/cache"
	"juryboard/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "juryboard/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "juryboard/internal/infrastructure/persistence/sqlite/uow"
	"juryboard/internal/ports"
	"juryboard/internal/usecase/audit"
	"juryboard/internal/usecase/backup"
	"juryboard/internal/usecase/evaluation"
)

type captureNotifier struct {
	kind       ports.NotificationKind
	recipients []uint64
	events     []ports.ResetEvent
}

func (n *captureNotifier) Notify(_ context.Context, kind ports.NotificationKind, recipients []uint64, _ map[string]string) error {
	n.kind = kind
	n.recipients = recipients
	return nil
}

func (n *captureNotifier) PublishResetEvent(_ context.Context, event ports.ResetEvent) error {
	n.events = append(n.events, event)
	return nil
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, ports.NotificationKind, []uint64, map[string]string) error {
	return errors.New("broker unreachable")
}

func (failingNotifier) PublishResetEvent(context.Context, ports.ResetEvent) error {
	return errors.New("broker unreachable")
}

type failingSnapshotter struct{}

func (failingSnapshotter) CaptureInTx(context.Context, jury.ResetScope, ports.EvaluationFilter, string, uint64, bool, map[string]string) (ports.BackupSnapshot, error) {
	return ports.BackupSnapshot{}, jury.ErrBackupFailed
}

type harness struct {
	svc      *Service
	evals    *sqliterepo.EvaluationRepository
	phase    *sqliterepo.PhaseRepository
	backups  *sqliterepo.BackupRepository
	audits   *sqliterepo.AuditRepository
	uow      ports.UnitOfWork
	cache    ports.Cache
	notifier *captureNotifier
	db       *gorm.DB
}

func setupHarness(t *testing.T) *harness {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "juryboard.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Evaluation{},
		&model.RawVote{},
		&model.BackupSnapshot{},
		&model.AuditLog{},
		&model.PhaseState{},
		&model.BoardKV{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	evals := sqliterepo.NewEvaluationRepository(db)
	phase := sqliterepo.NewPhaseRepository(db)
	backups := sqliterepo.NewBackupRepository(db)
	audits := sqliterepo.NewAuditRepository(db)
	uow := sqliteuow.NewUnitOfWork(db)
	cache := cacheinfra.NewSQLiteCache(db)
	notifier := &captureNotifier{}

	svc := NewService(
		evals,
		phase,
		uow,
		cache,
		notifier,
		backup.NewService(evals, backups, uow),
		audit.NewService(audits),
	)

	return &harness{
		svc:      svc,
		evals:    evals,
		phase:    phase,
		backups:  backups,
		audits:   audits,
		uow:      uow,
		cache:    cache,
		notifier: notifier,
		db:       db,
	}
}

func (h *harness) seedEvaluation(t *testing.T, candidateID, reviewerID uint64, round string, scores jury.ScoreSet) {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := h.evals.Insert(context.Background(), ports.EvaluationCreate{
		CandidateID: candidateID,
		ReviewerID:  reviewerID,
		Round:       round,
		Scores:      scores,
		CreatedAt:   now,
	}); err != nil {
		t.Fatalf("seed evaluation: %v", err)
	}

	creates := make([]ports.RawVoteCreate, 0, len(jury.CriterionNames))
	for i, criterion := range jury.CriterionNames {
		creates = append(creates, ports.RawVoteCreate{
			CandidateID: candidateID,
			ReviewerID:  reviewerID,
			Round:       round,
			Criterion:   criterion,
			Score:       scores[i],
			CreatedAt:   now,
		})
	}
	if err := h.evals.InsertRawVotes(context.Background(), creates); err != nil {
		t.Fatalf("seed raw votes: %v", err)
	}
}

func (h *harness) activeVotes(t *testing.T, filter ports.EvaluationFilter) []ports.RawVote {
	t.Helper()
	votes, err := h.evals.FindActiveRawVotes(context.Background(), filter)
	if err != nil {
		t.Fatalf("find active raw votes: %v", err)
	}
	return votes
}

func (h *harness) activeCount(t *testing.T, filter ports.EvaluationFilter) int64 {
	t.Helper()
	count, err := h.evals.CountActive(context.Background(), filter)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	return count
}

func (h *harness) snapshotCount(t *testing.T) int {
	t.Helper()
	snapshots, err := h.backups.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	return len(snapshots)
}

func (h *harness) auditEntries(t *testing.T) []ports.AuditEntry {
	t.Helper()
	entries, err := h.audits.ListRecent(context.Background(), 100)
	if err != nil {
		t.Fatalf("list audit entries: %v", err)
	}
	return entries
}

func adminRequest(reason string) Request {
	return Request{
		Actor:  jury.Actor{ID: 7, Role: jury.RoleAdmin},
		Reason: reason,
	}
}

func TestResetIndividualDeactivatesBacksUpAndAudits(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})

	result, err := h.svc.ResetIndividual(ctx, IndividualResetInput{
		Request:     adminRequest("duplicate submission"),
		CandidateID: 1,
		ReviewerID:  10,
	})
	if err != nil {
		t.Fatalf("reset individual: %v", err)
	}

	if result.Scope != jury.ScopeIndividual {
		t.Fatalf("scope mismatch: %q", result.Scope)
	}
	if result.RowsAffected != 1 {
		t.Fatalf("expected 1 affected row, got %d", result.RowsAffected)
	}
	if result.SnapshotUID == "" {
		t.Fatalf("snapshot uid missing")
	}
	if result.AuditID == 0 {
		t.Fatalf("audit id missing")
	}

	if n := h.activeCount(t, ports.EvaluationFilter{CandidateID: 1, ReviewerID: 10}); n != 0 {
		t.Fatalf("row still active: %d", n)
	}
	if n := h.snapshotCount(t); n != 1 {
		t.Fatalf("expected 1 snapshot, got %d", n)
	}

	entries := h.auditEntries(t)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.ResetType != string(jury.ScopeIndividual) {
		t.Fatalf("reset type mismatch: %q", entry.ResetType)
	}
	if entry.VotesAffected != 1 {
		t.Fatalf("votes affected mismatch: %d", entry.VotesAffected)
	}
	if entry.CandidateID == nil || *entry.CandidateID != 1 {
		t.Fatalf("candidate id not recorded: %v", entry.CandidateID)
	}
	if entry.ReviewerID == nil || *entry.ReviewerID != 10 {
		t.Fatalf("reviewer id not recorded: %v", entry.ReviewerID)
	}
}

func TestResetByCandidateCoversAllReviewers(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	h.seedEvaluation(t, 1, 11, "round-1", jury.ScoreSet{9, 8, 8, 7, 8})
	h.seedEvaluation(t, 2, 10, "round-1", jury.ScoreSet{5, 5, 5, 5, 5})

	result, err := h.svc.ResetByCandidate(ctx, CandidateResetInput{
		Request:     adminRequest("score dispute"),
		CandidateID: 1,
	})
	if err != nil {
		t.Fatalf("reset by candidate: %v", err)
	}

	if result.RowsAffected != 2 {
		t.Fatalf("expected 2 affected rows, got %d", result.RowsAffected)
	}
	if n := h.activeCount(t, ports.EvaluationFilter{CandidateID: 1}); n != 0 {
		t.Fatalf("candidate 1 rows still active: %d", n)
	}
	if n := h.activeCount(t, ports.EvaluationFilter{CandidateID: 2}); n != 1 {
		t.Fatalf("candidate 2 must be untouched, got %d active", n)
	}
	if votes := h.activeVotes(t, ports.EvaluationFilter{CandidateID: 1}); len(votes) != 0 {
		t.Fatalf("candidate 1 raw votes still active: %d", len(votes))
	}
	if votes := h.activeVotes(t, ports.EvaluationFilter{CandidateID: 2}); len(votes) != 5 {
		t.Fatalf("candidate 2 raw votes must be untouched, got %d", len(votes))
	}
	if n := h.snapshotCount(t); n != 1 {
		t.Fatalf("expected exactly 1 snapshot, got %d", n)
	}
	if len(h.auditEntries(t)) != 1 {
		t.Fatalf("expected exactly 1 audit entry")
	}
}

func TestBackupFailureAbortsWholeReset(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	h.svc.snapshots = failingSnapshotter{}

	_, err := h.svc.ResetIndividual(ctx, IndividualResetInput{
		Request:     adminRequest("should not happen"),
		CandidateID: 1,
		ReviewerID:  10,
	})
	if !errors.Is(err, jury.ErrBackupFailed) {
		t.Fatalf("expected ErrBackupFailed, got %v", err)
	}

	if n := h.activeCount(t, ports.EvaluationFilter{CandidateID: 1}); n != 1 {
		t.Fatalf("row must remain active after failed backup, got %d", n)
	}
	if len(h.auditEntries(t)) != 0 {
		t.Fatalf("no audit entry may exist after failed backup")
	}
	if n := h.snapshotCount(t); n != 0 {
		t.Fatalf("no snapshot may exist after failed backup, got %d", n)
	}
}

func TestSecondResetFindsNothing(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})

	input := IndividualResetInput{
		Request:     adminRequest("first"),
		CandidateID: 1,
		ReviewerID:  10,
	}
	if _, err := h.svc.ResetIndividual(ctx, input); err != nil {
		t.Fatalf("first reset: %v", err)
	}

	_, err := h.svc.ResetIndividual(ctx, input)
	if !errors.Is(err, jury.ErrNothingToReset) {
		t.Fatalf("expected ErrNothingToReset, got %v", err)
	}

	// The rolled-back second attempt must leave no extra snapshot or audit entry.
	if n := h.snapshotCount(t); n != 1 {
		t.Fatalf("expected 1 snapshot, got %d", n)
	}
	if len(h.auditEntries(t)) != 1 {
		t.Fatalf("expected 1 audit entry")
	}
}

func TestResetThenResubmitLeavesOneVotePerCriterion(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})

	if _, err := h.svc.ResetIndividual(ctx, IndividualResetInput{
		Request:     adminRequest("scoring error"),
		CandidateID: 1,
		ReviewerID:  10,
	}); err != nil {
		t.Fatalf("reset individual: %v", err)
	}

	filter := ports.EvaluationFilter{CandidateID: 1, ReviewerID: 10, Round: "round-1"}
	if votes := h.activeVotes(t, filter); len(votes) != 0 {
		t.Fatalf("raw votes must be deactivated with their evaluation, got %d active", len(votes))
	}

	// A fresh submission for the same triple must start clean: five new
	// vote rows, none of the reset ones resurfacing alongside them.
	submissions := evaluation.NewService(h.evals, h.phase, h.uow, h.cache)
	resubmitted := jury.ScoreSet{1, 2, 3, 4, 5}
	if _, err := submissions.Submit(ctx, evaluation.SubmitInput{
		CandidateID: 1,
		ReviewerID:  10,
		Scores:      resubmitted,
	}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	votes := h.activeVotes(t, filter)
	if len(votes) != jury.CriterionCount {
		t.Fatalf("expected one active vote per criterion, got %d", len(votes))
	}
	byCriterion := make(map[string]int, len(votes))
	for _, vote := range votes {
		byCriterion[vote.Criterion] = vote.Score
	}
	for i, criterion := range jury.CriterionNames {
		if byCriterion[criterion] != resubmitted[i] {
			t.Fatalf("criterion %s score %d, want %d", criterion, byCriterion[criterion], resubmitted[i])
		}
	}
}

func TestReviewerAuthorization(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	h.seedEvaluation(t, 1, 11, "round-1", jury.ScoreSet{9, 8, 8, 7, 8})

	reviewer := Request{Actor: jury.Actor{ID: 10, Role: jury.RoleReviewer}}

	// A reviewer may reset their own individual record.
	if _, err := h.svc.ResetIndividual(ctx, IndividualResetInput{
		Request:     reviewer,
		CandidateID: 1,
		ReviewerID:  10,
	}); err != nil {
		t.Fatalf("own individual reset: %v", err)
	}

	// But not another reviewer's record.
	_, err := h.svc.ResetIndividual(ctx, IndividualResetInput{
		Request:     reviewer,
		CandidateID: 1,
		ReviewerID:  11,
	})
	if !errors.Is(err, jury.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// And never a bulk scope, even over their own records.
	_, err = h.svc.ResetByReviewer(ctx, ReviewerResetInput{
		Request:    reviewer,
		ReviewerID: 10,
	})
	if !errors.Is(err, jury.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bulk scope, got %v", err)
	}

	if n := h.activeCount(t, ports.EvaluationFilter{ReviewerID: 11}); n != 1 {
		t.Fatalf("other reviewer's row must be untouched")
	}
}

func TestFullSystemGuards(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})

	_, err := h.svc.ResetFullSystem(ctx, FullSystemResetInput{
		Request: adminRequest(""),
		Confirm: true,
	})
	if !errors.Is(err, jury.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}

	_, err = h.svc.ResetFullSystem(ctx, FullSystemResetInput{
		Request: adminRequest("season over"),
		Confirm: false,
	})
	if !errors.Is(err, jury.ErrConfirmRequired) {
		t.Fatalf("expected ErrConfirmRequired, got %v", err)
	}

	// Guard failures happen before the transaction: nothing may be written.
	if n := h.snapshotCount(t); n != 0 {
		t.Fatalf("guard failure produced a snapshot")
	}
	if len(h.auditEntries(t)) != 0 {
		t.Fatalf("guard failure produced an audit entry")
	}
}

func TestFullSystemResetClearsEvaluationsAndRawVotes(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	h.seedEvaluation(t, 2, 11, "round-2", jury.ScoreSet{9, 9, 9, 9, 9})

	result, err := h.svc.ResetFullSystem(ctx, FullSystemResetInput{
		Request: adminRequest("season over"),
		Confirm: true,
	})
	if err != nil {
		t.Fatalf("full system reset: %v", err)
	}

	// 2 evaluations plus 5 raw votes each.
	if result.RowsAffected != 12 {
		t.Fatalf("expected 12 affected rows, got %d", result.RowsAffected)
	}
	if n := h.activeCount(t, ports.EvaluationFilter{}); n != 0 {
		t.Fatalf("evaluations still active: %d", n)
	}
	votes, err := h.evals.FindActiveRawVotes(ctx, ports.EvaluationFilter{})
	if err != nil {
		t.Fatalf("find raw votes: %v", err)
	}
	if len(votes) != 0 {
		t.Fatalf("raw votes still active: %d", len(votes))
	}
}

func TestPhaseTransitionArchivesOldRound(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	h.seedEvaluation(t, 2, 11, "round-1", jury.ScoreSet{9, 8, 8, 7, 8})

	result, err := h.svc.PhaseTransition(ctx, PhaseTransitionInput{
		Request:  adminRequest("semifinals done"),
		NewRound: "round-2",
	})
	if err != nil {
		t.Fatalf("phase transition: %v", err)
	}
	if result.RowsAffected != 2 {
		t.Fatalf("expected 2 archived rows, got %d", result.RowsAffected)
	}

	round, err := h.phase.CurrentRound(ctx)
	if err != nil {
		t.Fatalf("current round: %v", err)
	}
	if round != "round-2" {
		t.Fatalf("round pointer not advanced: %q", round)
	}

	// Archived rows stay active under the archive tag.
	if n := h.activeCount(t, ports.EvaluationFilter{Round: ArchivedRoundTag("round-1")}); n != 2 {
		t.Fatalf("expected 2 active archived rows, got %d", n)
	}
	if n := h.activeCount(t, ports.EvaluationFilter{Round: "round-1"}); n != 0 {
		t.Fatalf("old round rows must be retagged, got %d", n)
	}

	// Transitioning to the same round is rejected.
	if _, err := h.svc.PhaseTransition(ctx, PhaseTransitionInput{
		Request:  adminRequest("again"),
		NewRound: "round-2",
	}); err == nil {
		t.Fatalf("expected error for same-round transition")
	}
}

func TestVotingLockedRejectsAllScopes(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := h.phase.SetLocked(ctx, true, now); err != nil {
		t.Fatalf("lock: %v", err)
	}

	_, err := h.svc.ResetIndividual(ctx, IndividualResetInput{
		Request:     adminRequest("locked"),
		CandidateID: 1,
		ReviewerID:  10,
	})
	if !errors.Is(err, jury.ErrVotingLocked) {
		t.Fatalf("expected ErrVotingLocked, got %v", err)
	}

	_, err = h.svc.ResetFullSystem(ctx, FullSystemResetInput{
		Request: adminRequest("locked"),
		Confirm: true,
	})
	if !errors.Is(err, jury.ErrVotingLocked) {
		t.Fatalf("expected ErrVotingLocked, got %v", err)
	}

	if n := h.activeCount(t, ports.EvaluationFilter{}); n != 1 {
		t.Fatalf("locked store must be unchanged")
	}
}

func TestAuditTrailAccumulatesPerReset(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	for candidateID := uint64(1); candidateID <= 3; candidateID++ {
		h.seedEvaluation(t, candidateID, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	}

	for candidateID := uint64(1); candidateID <= 3; candidateID++ {
		if _, err := h.svc.ResetByCandidate(ctx, CandidateResetInput{
			Request:     adminRequest("sweep"),
			CandidateID: candidateID,
		}); err != nil {
			t.Fatalf("reset candidate %d: %v", candidateID, err)
		}
	}

	entries := h.auditEntries(t)
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.VotesAffected != 1 {
			t.Fatalf("each reset affected 1 row, got %d", entry.VotesAffected)
		}
	}
	if n := h.snapshotCount(t); n != 3 {
		t.Fatalf("expected 3 snapshots, got %d", n)
	}
}

func TestNotifierFailureDoesNotFailCommittedReset(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	h.svc.notifier = failingNotifier{}

	result, err := h.svc.ResetIndividual(ctx, IndividualResetInput{
		Request: Request{
			Actor:  jury.Actor{ID: 7, Role: jury.RoleAdmin},
			Reason: "dispute",
			Notify: true,
		},
		CandidateID: 1,
		ReviewerID:  10,
	})
	if err != nil {
		t.Fatalf("reset must commit despite notifier failure: %v", err)
	}
	if result.RowsAffected != 1 {
		t.Fatalf("expected 1 affected row, got %d", result.RowsAffected)
	}
	if n := h.activeCount(t, ports.EvaluationFilter{CandidateID: 1}); n != 0 {
		t.Fatalf("reset not committed")
	}
	if len(h.auditEntries(t)) != 1 {
		t.Fatalf("audit entry missing")
	}
}

func TestNotificationsAfterCommit(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	h.seedEvaluation(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	h.seedEvaluation(t, 1, 11, "round-1", jury.ScoreSet{9, 8, 8, 7, 8})

	result, err := h.svc.ResetByCandidate(ctx, CandidateResetInput{
		Request: Request{
			Actor:  jury.Actor{ID: 7, Role: jury.RoleAdmin},
			Reason: "dispute",
			Notify: true,
		},
		CandidateID: 1,
	})
	if err != nil {
		t.Fatalf("reset by candidate: %v", err)
	}

	if h.notifier.kind != ports.NotifyCandidateReset {
		t.Fatalf("notification kind mismatch: %q", h.notifier.kind)
	}
	if len(h.notifier.recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %v", h.notifier.recipients)
	}
	if len(h.notifier.events) != 1 {
		t.Fatalf("expected 1 reset event, got %d", len(h.notifier.events))
	}
	event := h.notifier.events[0]
	if event.Scope != string(jury.ScopeByCandidate) {
		t.Fatalf("event scope mismatch: %q", event.Scope)
	}
	if event.SnapshotUID != result.SnapshotUID {
		t.Fatalf("event snapshot mismatch: %q", event.SnapshotUID)
	}
}
