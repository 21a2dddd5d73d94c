package ports

import "context"

// AuditEntry is one append-only record of a completed reset operation.
type AuditEntry struct {
	AuditID       uint64
	ResetType     string
	InitiatedBy   uint64
	InitiatorRole string
	CandidateID   *uint64
	ReviewerID    *uint64
	VotesAffected int64
	Reason        string
	IPAddress     string
	UserAgent     string
	CreatedAt     string
}

type AuditEntryCreate struct {
	ResetType     string
	InitiatedBy   uint64
	InitiatorRole string
	CandidateID   *uint64
	ReviewerID    *uint64
	VotesAffected int64
	Reason        string
	IPAddress     string
	UserAgent     string
	CreatedAt     string
}

// AuditStatistics is the aggregate view used for reporting.
type AuditStatistics struct {
	TotalResets       int64
	ByType            map[string]int64
	Recent30Days      int64
	TotalRowsAffected int64
}

// AuditRepository is append-only; entries are never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, create AuditEntryCreate) (uint64, error)
	ListRecent(ctx context.Context, limit int) ([]AuditEntry, error)
	Statistics(ctx context.Context, since string) (AuditStatistics, error)
}
