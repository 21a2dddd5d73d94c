package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/infrastructure/persistence/sqlite/model"
	"juryboard/internal/ports"
)

type EvaluationRepository struct {
	db *gorm.DB
}

var _ ports.EvaluationRepository = (*EvaluationRepository)(nil)

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

func applyFilter(query *gorm.DB, filter ports.EvaluationFilter) *gorm.DB {
	query = query.Where("is_active = ?", true)
	if filter.CandidateID != 0 {
		query = query.Where("candidate_id = ?", filter.CandidateID)
	}
	if filter.ReviewerID != 0 {
		query = query.Where("reviewer_id = ?", filter.ReviewerID)
	}
	if filter.Round != "" {
		query = query.Where("round = ?", filter.Round)
	}
	return query
}

func (r *EvaluationRepository) FindActive(ctx context.Context, filter ports.EvaluationFilter) ([]ports.Evaluation, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Evaluation
	if err := applyFilter(db.Model(&model.Evaluation{}), filter).
		Order("evaluation_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query active evaluations")
	}

	items := make([]ports.Evaluation, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapEvaluation(row))
	}
	return items, nil
}

func (r *EvaluationRepository) CountActive(ctx context.Context, filter ports.EvaluationFilter) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := applyFilter(db.Model(&model.Evaluation{}), filter).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count active evaluations")
	}
	return count, nil
}

func (r *EvaluationRepository) Insert(ctx context.Context, create ports.EvaluationCreate) (ports.Evaluation, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Evaluation{}, err
	}

	row := model.Evaluation{
		CandidateID: create.CandidateID,
		ReviewerID:  create.ReviewerID,
		Round:       create.Round,
		Score1:      create.Scores[0],
		Score2:      create.Scores[1],
		Score3:      create.Scores[2],
		Score4:      create.Scores[3],
		Score5:      create.Scores[4],
		TotalScore:  create.Scores.Total(),
		Comments:    create.Comments,
		IsActive:    true,
		CreatedAt:   create.CreatedAt,
		UpdatedAt:   create.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Evaluation{}, errs.Wrap(err, "insert evaluation")
	}
	return mapEvaluation(row), nil
}

func (r *EvaluationRepository) UpdateScores(ctx context.Context, evaluationID uint64, scores jury.ScoreSet, comments string, updatedAt string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.Evaluation{}).
		Where("evaluation_id = ? AND is_active = ?", evaluationID, true).
		Updates(map[string]any{
			"score_1":     scores[0],
			"score_2":     scores[1],
			"score_3":     scores[2],
			"score_4":     scores[3],
			"score_5":     scores[4],
			"total_score": scores.Total(),
			"comments":    comments,
			"updated_at":  updatedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update evaluation scores")
	}
	if result.RowsAffected == 0 {
		return errors.New("no active evaluation to update")
	}
	return nil
}

func (r *EvaluationRepository) Deactivate(ctx context.Context, filter ports.EvaluationFilter, actorID uint64, resetAt string) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	result := applyFilter(db.Model(&model.Evaluation{}), filter).
		Updates(map[string]any{
			"is_active": false,
			"reset_at":  resetAt,
			"reset_by":  actorID,
		})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "deactivate evaluations")
	}
	return result.RowsAffected, nil
}

func (r *EvaluationRepository) RetagRound(ctx context.Context, oldRound string, newRound string) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	// Rows stay active; only the round tag moves. Raw votes carry the
	// same tag and move with their evaluations, though only evaluation
	// rows count toward the result.
	result := db.Model(&model.Evaluation{}).
		Where("is_active = ? AND round = ?", true, oldRound).
		Update("round", newRound)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "retag evaluation round")
	}
	if err := db.Model(&model.RawVote{}).
		Where("is_active = ? AND round = ?", true, oldRound).
		Update("round", newRound).Error; err != nil {
		return 0, errs.Wrap(err, "retag raw vote round")
	}
	return result.RowsAffected, nil
}

func (r *EvaluationRepository) Reactivate(ctx context.Context, row ports.Evaluation) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.Evaluation{}).
		Where("evaluation_id = ? AND is_active = ?", row.EvaluationID, false).
		Updates(map[string]any{
			"is_active": true,
			"reset_at":  nil,
			"reset_by":  nil,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "reactivate evaluation")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Original row is gone; re-insert it from the snapshot copy.
	fresh := model.Evaluation{
		CandidateID: row.CandidateID,
		ReviewerID:  row.ReviewerID,
		Round:       row.Round,
		Score1:      row.Scores[0],
		Score2:      row.Scores[1],
		Score3:      row.Scores[2],
		Score4:      row.Scores[3],
		Score5:      row.Scores[4],
		TotalScore:  row.Scores.Total(),
		Comments:    row.Comments,
		IsActive:    true,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := db.Create(&fresh).Error; err != nil {
		return errs.Wrap(err, "reinsert evaluation from snapshot")
	}
	return nil
}

func (r *EvaluationRepository) FindActiveRawVotes(ctx context.Context, filter ports.EvaluationFilter) ([]ports.RawVote, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.RawVote
	if err := applyFilter(db.Model(&model.RawVote{}), filter).
		Order("raw_vote_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query active raw votes")
	}

	items := make([]ports.RawVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRawVote(row))
	}
	return items, nil
}

func (r *EvaluationRepository) InsertRawVotes(ctx context.Context, creates []ports.RawVoteCreate) error {
	if len(creates) == 0 {
		return nil
	}

	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	rows := make([]model.RawVote, 0, len(creates))
	for _, create := range creates {
		rows = append(rows, model.RawVote{
			CandidateID: create.CandidateID,
			ReviewerID:  create.ReviewerID,
			Round:       create.Round,
			Criterion:   create.Criterion,
			Score:       create.Score,
			IsActive:    true,
			CreatedAt:   create.CreatedAt,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert raw votes")
	}
	return nil
}

func (r *EvaluationRepository) UpdateRawVoteScores(ctx context.Context, filter ports.EvaluationFilter, scores jury.ScoreSet) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	for i, criterion := range jury.CriterionNames {
		result := applyFilter(db.Model(&model.RawVote{}), filter).
			Where("criterion = ?", criterion).
			Update("score", scores[i])
		if result.Error != nil {
			return errs.Wrapf(result.Error, "update raw vote %s", criterion)
		}
	}
	return nil
}

func (r *EvaluationRepository) DeactivateRawVotes(ctx context.Context, filter ports.EvaluationFilter, actorID uint64, resetAt string) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	result := applyFilter(db.Model(&model.RawVote{}), filter).
		Updates(map[string]any{
			"is_active": false,
			"reset_at":  resetAt,
			"reset_by":  actorID,
		})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "deactivate raw votes")
	}
	return result.RowsAffected, nil
}

func (r *EvaluationRepository) ReactivateRawVote(ctx context.Context, row ports.RawVote) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.RawVote{}).
		Where("raw_vote_id = ? AND is_active = ?", row.RawVoteID, false).
		Updates(map[string]any{
			"is_active": true,
			"reset_at":  nil,
			"reset_by":  nil,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "reactivate raw vote")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	fresh := model.RawVote{
		CandidateID: row.CandidateID,
		ReviewerID:  row.ReviewerID,
		Round:       row.Round,
		Criterion:   row.Criterion,
		Score:       row.Score,
		IsActive:    true,
		CreatedAt:   row.CreatedAt,
	}
	if err := db.Create(&fresh).Error; err != nil {
		return errs.Wrap(err, "reinsert raw vote from snapshot")
	}
	return nil
}

func mapEvaluation(row model.Evaluation) ports.Evaluation {
	return ports.Evaluation{
		EvaluationID: row.EvaluationID,
		CandidateID:  row.CandidateID,
		ReviewerID:   row.ReviewerID,
		Round:        row.Round,
		Scores:       jury.ScoreSet{row.Score1, row.Score2, row.Score3, row.Score4, row.Score5},
		TotalScore:   row.TotalScore,
		Comments:     row.Comments,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		ResetAt:      row.ResetAt,
		ResetBy:      row.ResetBy,
	}
}

func mapRawVote(row model.RawVote) ports.RawVote {
	return ports.RawVote{
		RawVoteID:   row.RawVoteID,
		CandidateID: row.CandidateID,
		ReviewerID:  row.ReviewerID,
		Round:       row.Round,
		Criterion:   row.Criterion,
		Score:       row.Score,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		ResetAt:     row.ResetAt,
		ResetBy:     row.ResetBy,
	}
}
