package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/infrastructure/persistence/sqlite/model"
	"juryboard/internal/ports"
)

type BackupRepository struct {
	db *gorm.DB
}

var _ ports.BackupRepository = (*BackupRepository)(nil)

func NewBackupRepository(db *gorm.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

func (r *BackupRepository) Insert(ctx context.Context, create ports.BackupSnapshotCreate) (ports.BackupSnapshot, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.BackupSnapshot{}, err
	}

	if strings.TrimSpace(create.SnapshotUID) == "" {
		return ports.BackupSnapshot{}, errors.New("snapshot uid is required")
	}

	row := model.BackupSnapshot{
		SnapshotUID: create.SnapshotUID,
		ScopeType:   create.ScopeType,
		Payload:     create.Payload,
		Reason:      create.Reason,
		CreatedBy:   create.CreatedBy,
		CreatedAt:   create.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.BackupSnapshot{}, errs.Wrap(err, "insert backup snapshot")
	}
	return mapSnapshot(row), nil
}

func (r *BackupRepository) Get(ctx context.Context, snapshotUID string) (ports.BackupSnapshot, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.BackupSnapshot{}, err
	}

	var row model.BackupSnapshot
	if err := db.Where("snapshot_uid = ?", snapshotUID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.BackupSnapshot{}, jury.ErrSnapshotNotFound
		}
		return ports.BackupSnapshot{}, errs.Wrap(err, "query backup snapshot")
	}
	return mapSnapshot(row), nil
}

func (r *BackupRepository) List(ctx context.Context, limit int) ([]ports.BackupSnapshot, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.BackupSnapshot{}).Order("backup_id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.BackupSnapshot
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "list backup snapshots")
	}

	items := make([]ports.BackupSnapshot, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapSnapshot(row))
	}
	return items, nil
}

func mapSnapshot(row model.BackupSnapshot) ports.BackupSnapshot {
	return ports.BackupSnapshot{
		BackupID:    row.BackupID,
		SnapshotUID: row.SnapshotUID,
		ScopeType:   row.ScopeType,
		Payload:     row.Payload,
		Reason:      row.Reason,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
	}
}
