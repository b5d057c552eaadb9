package repository

import (
	"context"

	"github.com/lshigami/examhub/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Question, error)
	FindByAssessmentID(ctx context.Context, assessmentID string) ([]model.Question, error)
	FindCorrectOptionAndExplanation(ctx context.Context, questionID string) (*model.AnswerKey, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.position ASC")
		}).
		First(&question, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByAssessmentID(ctx context.Context, assessmentID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("position ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindCorrectOptionAndExplanation(ctx context.Context, questionID string) (*model.AnswerKey, error) {
	var key model.AnswerKey
	if err := r.db.WithContext(ctx).First(&key, "question_id = ?", questionID).Error; err != nil {
		return nil, err
	}
	return &key, nil
}
