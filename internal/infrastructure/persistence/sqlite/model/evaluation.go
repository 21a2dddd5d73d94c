package model

// Evaluation is the scored-evaluation row. At most one active row may
// exist per (candidate_id, reviewer_id, round) triple; resets flip
// is_active instead of deleting.
type Evaluation struct {
	EvaluationID uint64  `gorm:"column:evaluation_id;primaryKey;autoIncrement"`
	CandidateID  uint64  `gorm:"column:candidate_id;not null;index"`
	ReviewerID   uint64  `gorm:"column:reviewer_id;not null;index"`
	Round        string  `gorm:"column:round;type:text;not null;index"`
	Score1       int     `gorm:"column:score_1;not null"`
	Score2       int     `gorm:"column:score_2;not null"`
	Score3       int     `gorm:"column:score_3;not null"`
	Score4       int     `gorm:"column:score_4;not null"`
	Score5       int     `gorm:"column:score_5;not null"`
	TotalScore   int     `gorm:"column:total_score;not null"`
	Comments     string  `gorm:"column:comments;type:text;not null"`
	IsActive     bool    `gorm:"column:is_active;not null;default:1;index"`
	CreatedAt    string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt    string  `gorm:"column:updated_at;type:text;not null"`
	ResetAt      *string `gorm:"column:reset_at;type:text"`
	ResetBy      *uint64 `gorm:"column:reset_by"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
