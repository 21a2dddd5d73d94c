package repository

import (
	"context"
	"testing"
	"time"

	"juryboard/internal/ports"
)

func appendEntry(t *testing.T, repo *AuditRepository, resetType string, rows int64, createdAt string) uint64 {
	t.Helper()

	candidateID := uint64(1)
	auditID, err := repo.Append(context.Background(), ports.AuditEntryCreate{
		ResetType:     resetType,
		InitiatedBy:   7,
		InitiatorRole: "admin",
		CandidateID:   &candidateID,
		VotesAffected: rows,
		Reason:        "cleanup",
		IPAddress:     "127.0.0.1",
		UserAgent:     "test",
		CreatedAt:     createdAt,
	})
	if err != nil {
		t.Fatalf("append audit entry: %v", err)
	}
	return auditID
}

func TestAppendAndListRecent(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	now := time.Now().UTC().Format(time.RFC3339Nano)

	first := appendEntry(t, repo, "individual", 1, now)
	second := appendEntry(t, repo, "by_candidate", 3, now)
	if second <= first {
		t.Fatalf("audit ids must be monotonic: %d then %d", first, second)
	}

	entries, err := repo.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].AuditID != second {
		t.Fatalf("expected newest first, got %d", entries[0].AuditID)
	}
	if entries[0].CandidateID == nil || *entries[0].CandidateID != 1 {
		t.Fatalf("candidate id not preserved: %v", entries[0].CandidateID)
	}
}

func TestStatisticsAggregation(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))

	now := time.Now().UTC()
	recent := now.Format(time.RFC3339Nano)
	old := now.AddDate(0, 0, -60).Format(time.RFC3339Nano)

	appendEntry(t, repo, "individual", 1, recent)
	appendEntry(t, repo, "individual", 1, recent)
	appendEntry(t, repo, "full_system", 20, old)

	since := now.AddDate(0, 0, -30).Format(time.RFC3339Nano)
	stats, err := repo.Statistics(context.Background(), since)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}

	if stats.TotalResets != 3 {
		t.Fatalf("expected 3 total, got %d", stats.TotalResets)
	}
	if stats.ByType["individual"] != 2 {
		t.Fatalf("expected 2 individual, got %d", stats.ByType["individual"])
	}
	if stats.ByType["full_system"] != 1 {
		t.Fatalf("expected 1 full_system, got %d", stats.ByType["full_system"])
	}
	if stats.Recent30Days != 2 {
		t.Fatalf("expected 2 entries within 30 days, got %d", stats.Recent30Days)
	}
	if stats.TotalRowsAffected != 22 {
		t.Fatalf("expected 22 rows affected, got %d", stats.TotalRowsAffected)
	}
}

func TestStatisticsOnEmptyLog(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))

	since := time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC3339Nano)
	stats, err := repo.Statistics(context.Background(), since)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalResets != 0 || stats.TotalRowsAffected != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
