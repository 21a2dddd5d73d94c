package backup

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"juryboard/internal/domain/jury"
	"juryboard/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "juryboard/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "juryboard/internal/infrastructure/persistence/sqlite/uow"
	"juryboard/internal/ports"
)

type testEnv struct {
	svc   *Service
	evals *sqliterepo.EvaluationRepository
}

func setupService(t *testing.T) *testEnv {
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
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	evals := sqliterepo.NewEvaluationRepository(db)
	return &testEnv{
		svc:   NewService(evals, sqliterepo.NewBackupRepository(db), sqliteuow.NewUnitOfWork(db)),
		evals: evals,
	}
}

func (e *testEnv) seed(t *testing.T, candidateID, reviewerID uint64, round string, scores jury.ScoreSet) {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := e.evals.Insert(context.Background(), ports.EvaluationCreate{
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
	if err := e.evals.InsertRawVotes(context.Background(), creates); err != nil {
		t.Fatalf("seed raw votes: %v", err)
	}
}

func TestCapturePayloadCoversEvaluationsAndVotes(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	env.seed(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	env.seed(t, 1, 11, "round-1", jury.ScoreSet{9, 8, 8, 7, 8})

	snapshot, err := env.svc.CaptureInTx(ctx, jury.ScopeByCandidate, ports.EvaluationFilter{CandidateID: 1}, "dispute", 7, true, nil)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if snapshot.SnapshotUID == "" {
		t.Fatalf("snapshot uid missing")
	}
	if snapshot.ScopeType != string(jury.ScopeByCandidate) {
		t.Fatalf("scope mismatch: %q", snapshot.ScopeType)
	}

	var payload snapshotPayload
	if err := json.Unmarshal([]byte(snapshot.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Evaluations) != 2 {
		t.Fatalf("expected 2 evaluations in payload, got %d", len(payload.Evaluations))
	}
	if len(payload.RawVotes) != 2*len(jury.CriterionNames) {
		t.Fatalf("expected %d raw votes in payload, got %d", 2*len(jury.CriterionNames), len(payload.RawVotes))
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	env.seed(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})

	snapshot, err := env.svc.CaptureInTx(ctx, jury.ScopeIndividual, ports.EvaluationFilter{CandidateID: 1, ReviewerID: 10}, "oops", 7, true, nil)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	resetAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := env.evals.Deactivate(ctx, ports.EvaluationFilter{CandidateID: 1}, 7, resetAt); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := env.evals.DeactivateRawVotes(ctx, ports.EvaluationFilter{CandidateID: 1}, 7, resetAt); err != nil {
		t.Fatalf("deactivate raw votes: %v", err)
	}

	result, err := env.svc.Restore(ctx, RestoreInput{SnapshotUID: snapshot.SnapshotUID, Target: RestoreBoth})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if result.EvaluationRows != 1 {
		t.Fatalf("expected 1 restored evaluation, got %d", result.EvaluationRows)
	}
	if result.RawVoteRows != int64(len(jury.CriterionNames)) {
		t.Fatalf("expected %d restored votes, got %d", len(jury.CriterionNames), result.RawVoteRows)
	}
	if result.RestoredRows != result.EvaluationRows+result.RawVoteRows {
		t.Fatalf("restored rows must sum: %+v", result)
	}

	active, err := env.evals.FindActive(ctx, ports.EvaluationFilter{CandidateID: 1, ReviewerID: 10, Round: "round-1"})
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active row after restore, got %d", len(active))
	}
	if active[0].TotalScore != 35 {
		t.Fatalf("scores not restored: total %d", active[0].TotalScore)
	}
}

func TestRestoreConflictAbortsEverything(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	env.seed(t, 1, 10, "round-1", jury.ScoreSet{8, 7, 9, 6, 5})
	env.seed(t, 2, 10, "round-1", jury.ScoreSet{5, 5, 5, 5, 5})

	snapshot, err := env.svc.CaptureInTx(ctx, jury.ScopeByReviewer, ports.EvaluationFilter{ReviewerID: 10}, "redo", 7, false, nil)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	// Deactivate only candidate 1; candidate 2 stays active and conflicts.
	resetAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := env.evals.Deactivate(ctx, ports.EvaluationFilter{CandidateID: 1}, 7, resetAt); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = env.svc.Restore(ctx, RestoreInput{SnapshotUID: snapshot.SnapshotUID, Target: RestoreRecords})
	if !errors.Is(err, jury.ErrRestoreConflict) {
		t.Fatalf("expected ErrRestoreConflict, got %v", err)
	}

	// All-or-nothing: the non-conflicting row must not have been restored.
	active, err := env.evals.FindActive(ctx, ports.EvaluationFilter{CandidateID: 1})
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("partial restore leaked %d rows", len(active))
	}
}

func TestRestoreMissingSnapshot(t *testing.T) {
	env := setupService(t)

	_, err := env.svc.Restore(context.Background(), RestoreInput{SnapshotUID: "missing"})
	if !errors.Is(err, jury.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestParseRestoreTarget(t *testing.T) {
	cases := []struct {
		raw  string
		want RestoreTarget
		ok   bool
	}{
		{"", RestoreBoth, true},
		{"records", RestoreRecords, true},
		{" Scores ", RestoreScores, true},
		{"both", RestoreBoth, true},
		{"everything", "", false},
	}
	for _, tc := range cases {
		got, err := ParseRestoreTarget(tc.raw)
		if tc.ok && err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("parse %q: expected error", tc.raw)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("parse %q: got %q want %q", tc.raw, got, tc.want)
		}
	}
}
