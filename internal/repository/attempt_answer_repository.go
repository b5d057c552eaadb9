package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lshigami/examhub/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptAnswerRepository interface {
	WithTx(tx *gorm.DB) AttemptAnswerRepository
	// Upsert writes the answer for (AttemptID, QuestionID), replacing any previous content,
	// and returns the stored row.
	Upsert(ctx context.Context, answer *model.AttemptAnswer) (*model.AttemptAnswer, error)
	FindByID(ctx context.Context, id string) (*model.AttemptAnswer, error)
	FindByAttemptAndQuestion(ctx context.Context, attemptID, questionID string) (*model.AttemptAnswer, error)
	FindByAttempt(ctx context.Context, attemptID string) ([]model.AttemptAnswer, error)
	FindByQuestion(ctx context.Context, questionID string) ([]model.AttemptAnswer, error)
	FindByReviewer(ctx context.Context, reviewerID string) ([]model.AttemptAnswer, error)
	CountByAttempt(ctx context.Context, attemptID string) (int64, error)
	// CountUnreviewedOpen counts OPEN answers of the attempt that still have no correctness decision.
	CountUnreviewedOpen(ctx context.Context, attemptID string) (int64, error)
	// MarkReviewed records a review only if none was recorded before. It reports false otherwise.
	MarkReviewed(ctx context.Context, id, reviewerID string, isCorrect bool, comment *string, at time.Time) (bool, error)
	// SettleStatuses moves every answer of a submitted attempt to GRADED when its
	// correctness is known and to SUBMITTED otherwise.
	SettleStatuses(ctx context.Context, attemptID string) error
}

type attemptAnswerRepository struct {
	db *gorm.DB
}

func NewAttemptAnswerRepository(db *gorm.DB) AttemptAnswerRepository {
	return &attemptAnswerRepository{db: db}
}

func (r *attemptAnswerRepository) WithTx(tx *gorm.DB) AttemptAnswerRepository {
	return &attemptAnswerRepository{db: tx}
}

func (r *attemptAnswerRepository) Upsert(ctx context.Context, answer *model.AttemptAnswer) (*model.AttemptAnswer, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_option_id", "text_answer", "is_correct", "status", "updated_at",
			}),
		}).
		Create(answer).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert answer: %w", err)
	}
	// On conflict the stored row keeps its original id, so read it back.
	return r.FindByAttemptAndQuestion(ctx, answer.AttemptID, answer.QuestionID)
}

func (r *attemptAnswerRepository) FindByID(ctx context.Context, id string) (*model.AttemptAnswer, error) {
	var answer model.AttemptAnswer
	if err := r.db.WithContext(ctx).First(&answer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *attemptAnswerRepository) FindByAttemptAndQuestion(ctx context.Context, attemptID, questionID string) (*model.AttemptAnswer, error) {
	var answer model.AttemptAnswer
	err := r.db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *attemptAnswerRepository) FindByAttempt(ctx context.Context, attemptID string) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get answers by attempt: %w", err)
	}
	return answers, nil
}

func (r *attemptAnswerRepository) FindByQuestion(ctx context.Context, questionID string) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get answers by question: %w", err)
	}
	return answers, nil
}

func (r *attemptAnswerRepository) FindByReviewer(ctx context.Context, reviewerID string) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.db.WithContext(ctx).
		Where("reviewer_id = ?", reviewerID).
		Order("reviewed_at DESC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get answers by reviewer: %w", err)
	}
	return answers, nil
}

func (r *attemptAnswerRepository) CountByAttempt(ctx context.Context, attemptID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AttemptAnswer{}).
		Where("attempt_id = ?", attemptID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return count, nil
}

func (r *attemptAnswerRepository) CountUnreviewedOpen(ctx context.Context, attemptID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AttemptAnswer{}).
		Joins("JOIN questions ON questions.id = attempt_answers.question_id").
		Where("attempt_answers.attempt_id = ? AND questions.type = ? AND attempt_answers.is_correct IS NULL",
			attemptID, model.QuestionTypeOpen).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unreviewed answers: %w", err)
	}
	return count, nil
}

func (r *attemptAnswerRepository) MarkReviewed(ctx context.Context, id, reviewerID string, isCorrect bool, comment *string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.AttemptAnswer{}).
		Where("id = ? AND reviewer_id IS NULL", id).
		Updates(map[string]interface{}{
			"is_correct":      isCorrect,
			"teacher_comment": comment,
			"reviewer_id":     reviewerID,
			"reviewed_at":     at,
			"status":          model.AnswerStatusGraded,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to record review for answer %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *attemptAnswerRepository) SettleStatuses(ctx context.Context, attemptID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.AttemptAnswer{}).
		Where("attempt_id = ? AND is_correct IS NULL", attemptID).
		Update("status", model.AnswerStatusSubmitted).Error; err != nil {
		return fmt.Errorf("failed to mark answers submitted: %w", err)
	}
	if err := db.Model(&model.AttemptAnswer{}).
		Where("attempt_id = ? AND is_correct IS NOT NULL", attemptID).
		Update("status", model.AnswerStatusGraded).Error; err != nil {
		return fmt.Errorf("failed to mark answers graded: %w", err)
	}
	return nil
}
