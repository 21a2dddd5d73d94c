package model

// PhaseState is a single-row table (phase_state_id = 1) holding the global
// current-round pointer and its lock flag.
type PhaseState struct {
	PhaseStateID uint64 `gorm:"column:phase_state_id;primaryKey"`
	CurrentRound string `gorm:"column:current_round;type:text;not null"`
	IsLocked     bool   `gorm:"column:is_locked;not null;default:0"`
	UpdatedAt    string `gorm:"column:updated_at;type:text;not null"`
}

func (PhaseState) TableName() string {
	return "phase_state"
}
