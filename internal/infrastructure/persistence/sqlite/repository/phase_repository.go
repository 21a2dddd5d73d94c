package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"juryboard/internal/errs"
	"juryboard/internal/infrastructure/persistence/sqlite/model"
	"juryboard/internal/ports"
)

// DefaultRound seeds the phase pointer before any transition.
const DefaultRound = "round-1"

const phaseStateRowID = 1

type PhaseRepository struct {
	db *gorm.DB
}

var _ ports.PhaseGate = (*PhaseRepository)(nil)

func NewPhaseRepository(db *gorm.DB) *PhaseRepository {
	return &PhaseRepository{db: db}
}

func (r *PhaseRepository) load(ctx context.Context) (model.PhaseState, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return model.PhaseState{}, err
	}

	var row model.PhaseState
	if err := db.Where("phase_state_id = ?", phaseStateRowID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PhaseState{
				PhaseStateID: phaseStateRowID,
				CurrentRound: DefaultRound,
			}, nil
		}
		return model.PhaseState{}, errs.Wrap(err, "query phase state")
	}
	return row, nil
}

func (r *PhaseRepository) save(ctx context.Context, row model.PhaseState) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row.PhaseStateID = phaseStateRowID
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phase_state_id"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert phase state")
	}
	return nil
}

func (r *PhaseRepository) CurrentRound(ctx context.Context) (string, error) {
	row, err := r.load(ctx)
	if err != nil {
		return "", err
	}
	return row.CurrentRound, nil
}

func (r *PhaseRepository) IsLocked(ctx context.Context) (bool, error) {
	row, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	return row.IsLocked, nil
}

func (r *PhaseRepository) AdvanceRound(ctx context.Context, newRound string, updatedAt string) error {
	round := strings.TrimSpace(newRound)
	if round == "" {
		return errors.New("new round is required")
	}

	row, err := r.load(ctx)
	if err != nil {
		return err
	}

	row.CurrentRound = round
	row.UpdatedAt = updatedAt
	return r.save(ctx, row)
}

func (r *PhaseRepository) SetLocked(ctx context.Context, locked bool, updatedAt string) error {
	row, err := r.load(ctx)
	if err != nil {
		return err
	}

	row.IsLocked = locked
	row.UpdatedAt = updatedAt
	return r.save(ctx, row)
}
