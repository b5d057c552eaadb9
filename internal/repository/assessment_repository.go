package repository

import (
	"context"

	"github.com/lshigami/examhub/internal/cache"
	"github.com/lshigami/examhub/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AssessmentRepository interface {
	Create(ctx context.Context, assessment *model.Assessment) error
	// FindByID loads the assessment with ordered arguments and questions, each question
	// with its ordered options and answer key.
	FindByID(ctx context.Context, id string) (*model.Assessment, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *model.Assessment) error {
	// GORM creates Arguments, Questions, Options and AnswerKeys along with the assessment.
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *assessmentRepository) FindByID(ctx context.Context, id string) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.WithContext(ctx).
		Preload("Arguments", func(db *gorm.DB) *gorm.DB {
			return db.Order("arguments.position ASC")
		}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.position ASC")
		}).
		Preload("Questions.AnswerKey").
		First(&assessment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

// cachedAssessmentRepository reads assessments through Redis. Assessments are
// authored elsewhere and change rarely; entries expire with the cache TTL.
type cachedAssessmentRepository struct {
	AssessmentRepository
	cache *cache.Cache
}

func NewCachedAssessmentRepository(inner AssessmentRepository, c *cache.Cache) AssessmentRepository {
	if !c.Enabled() {
		return inner
	}
	return &cachedAssessmentRepository{AssessmentRepository: inner, cache: c}
}

func (r *cachedAssessmentRepository) FindByID(ctx context.Context, id string) (*model.Assessment, error) {
	key := cache.Key(cache.PrefixAssessment, id)

	var cached model.Assessment
	hit, err := r.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Str("assessmentID", id).Msg("Assessment cache read failed, falling back to database")
	}
	if hit {
		return &cached, nil
	}

	assessment, err := r.AssessmentRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, key, assessment); err != nil {
		log.Warn().Err(err).Str("assessmentID", id).Msg("Assessment cache write failed")
	}
	return assessment, nil
}
