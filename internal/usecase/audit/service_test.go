package audit

import (
	"context"
	"errors"
	"testing"

	"juryboard/internal/domain/jury"
	"juryboard/internal/ports"
)

type stubRepo struct {
	appendErr error
	appended  []ports.AuditEntryCreate
}

func (r *stubRepo) Append(_ context.Context, create ports.AuditEntryCreate) (uint64, error) {
	if r.appendErr != nil {
		return 0, r.appendErr
	}
	r.appended = append(r.appended, create)
	return uint64(len(r.appended)), nil
}

func (r *stubRepo) ListRecent(context.Context, int) ([]ports.AuditEntry, error) {
	return nil, nil
}

func (r *stubRepo) Statistics(context.Context, string) (ports.AuditStatistics, error) {
	return ports.AuditStatistics{}, nil
}

func TestAppendInTxValidates(t *testing.T) {
	svc := NewService(&stubRepo{})
	ctx := context.Background()

	_, err := svc.AppendInTx(ctx, ports.AuditEntryCreate{InitiatedBy: 7})
	if !errors.Is(err, jury.ErrAuditWriteFailed) {
		t.Fatalf("expected ErrAuditWriteFailed for missing type, got %v", err)
	}

	_, err = svc.AppendInTx(ctx, ports.AuditEntryCreate{ResetType: "individual"})
	if !errors.Is(err, jury.ErrAuditWriteFailed) {
		t.Fatalf("expected ErrAuditWriteFailed for missing initiator, got %v", err)
	}
}

func TestAppendInTxStampsCreatedAt(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	auditID, err := svc.AppendInTx(context.Background(), ports.AuditEntryCreate{
		ResetType:   "individual",
		InitiatedBy: 7,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if auditID != 1 {
		t.Fatalf("expected id 1, got %d", auditID)
	}
	if repo.appended[0].CreatedAt == "" {
		t.Fatalf("created_at not stamped")
	}
}

func TestAppendInTxWrapsStorageError(t *testing.T) {
	svc := NewService(&stubRepo{appendErr: errors.New("disk full")})

	_, err := svc.AppendInTx(context.Background(), ports.AuditEntryCreate{
		ResetType:   "individual",
		InitiatedBy: 7,
	})
	if !errors.Is(err, jury.ErrAuditWriteFailed) {
		t.Fatalf("expected ErrAuditWriteFailed, got %v", err)
	}
}
