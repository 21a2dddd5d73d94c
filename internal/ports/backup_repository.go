package ports

import "context"

// BackupSnapshot is an immutable pre-mutation capture of the rows a reset
// is about to affect. Payload is an opaque JSON document owned by the
// backup usecase.
type BackupSnapshot struct {
	BackupID    uint64
	SnapshotUID string
	ScopeType   string
	Payload     string
	Reason      string
	CreatedBy   uint64
	CreatedAt   string
}

type BackupSnapshotCreate struct {
	SnapshotUID string
	ScopeType   string
	Payload     string
	Reason      string
	CreatedBy   uint64
	CreatedAt   string
}

// BackupRepository persists snapshots. Insert participates in the caller's
// transaction when one is present in the context.
type BackupRepository interface {
	Insert(ctx context.Context, create BackupSnapshotCreate) (BackupSnapshot, error)

	// Get returns jury.ErrSnapshotNotFound when no snapshot matches.
	Get(ctx context.Context, snapshotUID string) (BackupSnapshot, error)
	List(ctx context.Context, limit int) ([]BackupSnapshot, error)
}
