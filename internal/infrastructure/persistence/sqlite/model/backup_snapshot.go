package model

// BackupSnapshot is immutable after insert.
type BackupSnapshot struct {
	BackupID    uint64 `gorm:"column:backup_id;primaryKey;autoIncrement"`
	SnapshotUID string `gorm:"column:snapshot_uid;type:text;not null;uniqueIndex"`
	ScopeType   string `gorm:"column:scope_type;type:text;not null;index"`
	Payload     string `gorm:"column:payload;type:text;not null"`
	Reason      string `gorm:"column:reason;type:text;not null"`
	CreatedBy   uint64 `gorm:"column:created_by;not null"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null;index"`
}

func (BackupSnapshot) TableName() string {
	return "backup_snapshots"
}
