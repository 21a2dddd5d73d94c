package repository

import (
	"context"

	"gorm.io/gorm"

	"juryboard/internal/errs"
	"juryboard/internal/infrastructure/persistence/sqlite/model"
	"juryboard/internal/ports"
)

type AuditRepository struct {
	db *gorm.DB
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, create ports.AuditEntryCreate) (uint64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	row := model.AuditLog{
		ResetType:     create.ResetType,
		InitiatedBy:   create.InitiatedBy,
		InitiatorRole: create.InitiatorRole,
		CandidateID:   create.CandidateID,
		ReviewerID:    create.ReviewerID,
		VotesAffected: create.VotesAffected,
		Reason:        create.Reason,
		IPAddress:     create.IPAddress,
		UserAgent:     create.UserAgent,
		CreatedAt:     create.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return 0, errs.Wrap(err, "append audit entry")
	}
	return row.AuditID, nil
}

func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]ports.AuditEntry, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.AuditLog{}).Order("audit_id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.AuditLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "list audit entries")
	}

	items := make([]ports.AuditEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAuditEntry(row))
	}
	return items, nil
}

func (r *AuditRepository) Statistics(ctx context.Context, since string) (ports.AuditStatistics, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.AuditStatistics{}, err
	}

	stats := ports.AuditStatistics{ByType: make(map[string]int64)}

	if err := db.Model(&model.AuditLog{}).Count(&stats.TotalResets).Error; err != nil {
		return ports.AuditStatistics{}, errs.Wrap(err, "count audit entries")
	}

	type typeCount struct {
		ResetType string
		Count     int64
	}
	var byType []typeCount
	if err := db.Model(&model.AuditLog{}).
		Select("reset_type, count(*) as count").
		Group("reset_type").
		Find(&byType).Error; err != nil {
		return ports.AuditStatistics{}, errs.Wrap(err, "count audit entries by type")
	}
	for _, tc := range byType {
		stats.ByType[tc.ResetType] = tc.Count
	}

	if since != "" {
		if err := db.Model(&model.AuditLog{}).
			Where("created_at >= ?", since).
			Count(&stats.Recent30Days).Error; err != nil {
			return ports.AuditStatistics{}, errs.Wrap(err, "count recent audit entries")
		}
	}

	var totalRows *int64
	if err := db.Model(&model.AuditLog{}).
		Select("sum(votes_affected)").
		Scan(&totalRows).Error; err != nil {
		return ports.AuditStatistics{}, errs.Wrap(err, "sum affected rows")
	}
	if totalRows != nil {
		stats.TotalRowsAffected = *totalRows
	}

	return stats, nil
}

func mapAuditEntry(row model.AuditLog) ports.AuditEntry {
	return ports.AuditEntry{
		AuditID:       row.AuditID,
		ResetType:     row.ResetType,
		InitiatedBy:   row.InitiatedBy,
		InitiatorRole: row.InitiatorRole,
		CandidateID:   row.CandidateID,
		ReviewerID:    row.ReviewerID,
		VotesAffected: row.VotesAffected,
		Reason:        row.Reason,
		IPAddress:     row.IPAddress,
		UserAgent:     row.UserAgent,
		CreatedAt:     row.CreatedAt,
	}
}
