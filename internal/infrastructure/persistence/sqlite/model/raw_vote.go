package model

// RawVote is one per-criterion vote row; five accompany each evaluation.
type RawVote struct {
	RawVoteID   uint64  `gorm:"column:raw_vote_id;primaryKey;autoIncrement"`
	CandidateID uint64  `gorm:"column:candidate_id;not null;index"`
	ReviewerID  uint64  `gorm:"column:reviewer_id;not null;index"`
	Round       string  `gorm:"column:round;type:text;not null;index"`
	Criterion   string  `gorm:"column:criterion;type:text;not null"`
	Score       int     `gorm:"column:score;not null"`
	IsActive    bool    `gorm:"column:is_active;not null;default:1;index"`
	CreatedAt   string  `gorm:"column:created_at;type:text;not null"`
	ResetAt     *string `gorm:"column:reset_at;type:text"`
	ResetBy     *uint64 `gorm:"column:reset_by"`
}

func (RawVote) TableName() string {
	return "raw_votes"
}
