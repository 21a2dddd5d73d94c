package model

// AuditLog rows are append-only; the core never updates or deletes them.
type AuditLog struct {
	AuditID       uint64  `gorm:"column:audit_id;primaryKey;autoIncrement"`
	ResetType     string  `gorm:"column:reset_type;type:text;not null;index"`
	InitiatedBy   uint64  `gorm:"column:initiated_by;not null;index"`
	InitiatorRole string  `gorm:"column:initiator_role;type:text;not null"`
	CandidateID   *uint64 `gorm:"column:affected_candidate_id"`
	ReviewerID    *uint64 `gorm:"column:affected_reviewer_id"`
	VotesAffected int64   `gorm:"column:votes_affected;not null"`
	Reason        string  `gorm:"column:reason;type:text;not null"`
	IPAddress     string  `gorm:"column:ip_address;type:text;not null"`
	UserAgent     string  `gorm:"column:user_agent;type:text;not null"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
