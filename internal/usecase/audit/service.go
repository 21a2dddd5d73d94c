package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/ports"
)

// Service is the audit logger: append-only history of reset operations
// plus the aggregate view used for reporting.
type Service struct {
	repo ports.AuditRepository
}

func NewService(repo ports.AuditRepository) *Service {
	return &Service{repo: repo}
}

// AppendInTx writes one audit entry inside the caller's transaction.
// A failure here must abort the enclosing reset: an unaudited reset is
// worse than a failed one.
func (s *Service) AppendInTx(ctx context.Context, create ports.AuditEntryCreate) (uint64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if s.repo == nil {
		return 0, errors.New("audit repository is required")
	}

	if strings.TrimSpace(create.ResetType) == "" {
		return 0, fmt.Errorf("%w: reset type is required", jury.ErrAuditWriteFailed)
	}
	if create.InitiatedBy == 0 {
		return 0, fmt.Errorf("%w: initiator is required", jury.ErrAuditWriteFailed)
	}
	if create.CreatedAt == "" {
		create.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	auditID, err := s.repo.Append(ctx, create)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", jury.ErrAuditWriteFailed, err)
	}
	return auditID, nil
}

// Recent returns the newest entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]ports.AuditEntry, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("audit repository is required")
	}

	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit)
}

// Statistics aggregates the audit log for dashboards. Read-only.
func (s *Service) Statistics(ctx context.Context) (ports.AuditStatistics, error) {
	if ctx == nil {
		return ports.AuditStatistics{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.AuditStatistics{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ports.AuditStatistics{}, errors.New("audit repository is required")
	}

	since := time.Now().AddDate(0, 0, -30).UTC().Format(time.RFC3339Nano)
	stats, err := s.repo.Statistics(ctx, since)
	if err != nil {
		return ports.AuditStatistics{}, errs.Wrap(err, "aggregate audit statistics")
	}
	return stats, nil
}
