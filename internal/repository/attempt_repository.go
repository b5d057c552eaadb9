package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/examhub/internal/model"
	"gorm.io/gorm"
)

// ErrActiveAttemptExists is returned by Create when the user already has an
// IN_PROGRESS attempt for the assessment.
var ErrActiveAttemptExists = errors.New("an in-progress attempt already exists for this user and assessment")

type AttemptFilters struct {
	Status       *model.AttemptStatus
	UserID       *string
	AssessmentID *string
	SortBy       string // startedAt, submittedAt, score, createdAt
	SortOrder    string // asc, desc
	Page         Page
}

var attemptSortColumns = map[string]string{
	"startedAt":   "started_at",
	"submittedAt": "submitted_at",
	"score":       "score",
	"createdAt":   "created_at",
}

// ValidAttemptSort reports whether sortBy names a sortable attempt column.
func ValidAttemptSort(sortBy string) bool {
	_, ok := attemptSortColumns[sortBy]
	return ok
}

// PendingReview is one row of the review queue.
type PendingReview struct {
	AttemptID          string
	UserID             string
	UserName           string
	AssessmentID       string
	AssessmentTitle    string
	StartedAt          time.Time
	SubmittedAt        *time.Time
	PendingAnswers     int64
	TotalOpenQuestions int64
}

type AttemptRepository interface {
	WithTx(tx *gorm.DB) AttemptRepository
	Create(ctx context.Context, attempt *model.Attempt) error
	FindByID(ctx context.Context, id string) (*model.Attempt, error)
	FindActive(ctx context.Context, userID, assessmentID string) (*model.Attempt, error)
	// TransitionStatus applies updates only while the attempt is still in status from.
	// It reports false when another request moved the attempt first.
	TransitionStatus(ctx context.Context, id string, from model.AttemptStatus, updates map[string]interface{}) (bool, error)
	List(ctx context.Context, filters AttemptFilters) ([]model.Attempt, int64, error)
	ListPendingReview(ctx context.Context, page Page) ([]PendingReview, int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) WithTx(tx *gorm.DB) AttemptRepository {
	return &attemptRepository{db: tx}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	err := r.db.WithContext(ctx).Create(attempt).Error
	if isUniqueViolation(err) {
		return ErrActiveAttemptExists
	}
	return err
}

func (r *attemptRepository) FindByID(ctx context.Context, id string) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindActive(ctx context.Context, userID, assessmentID string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ? AND status = ?", userID, assessmentID, model.AttemptStatusInProgress).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) TransitionStatus(ctx context.Context, id string, from model.AttemptStatus, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition attempt %s from %s: %w", id, from, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *attemptRepository) List(ctx context.Context, filters AttemptFilters) ([]model.Attempt, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Attempt{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.AssessmentID != nil {
		query = query.Where("assessment_id = ?", *filters.AssessmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count attempts: %w", err)
	}

	column, ok := attemptSortColumns[filters.SortBy]
	if !ok {
		column = "started_at"
	}
	direction := "DESC"
	if filters.SortOrder == "asc" {
		direction = "ASC"
	}

	var attempts []model.Attempt
	err := query.
		Preload("Assessment").
		Order(column + " " + direction).
		Order("id ASC").
		Limit(filters.Page.Limit).
		Offset(filters.Page.Offset).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, total, nil
}

func (r *attemptRepository) ListPendingReview(ctx context.Context, page Page) ([]PendingReview, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Table("attempts AS a").
			Joins("JOIN assessments s ON s.id = a.assessment_id").
			Where("a.status = ? AND s.type = ?", model.AttemptStatusSubmitted, model.AssessmentTypeProvaAberta)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pending reviews: %w", err)
	}

	var rows []PendingReview
	err := base().
		Select(`a.id AS attempt_id, a.user_id, COALESCE(acc.name, '') AS user_name,
			a.assessment_id, s.title AS assessment_title, a.started_at, a.submitted_at,
			(SELECT COUNT(*) FROM attempt_answers aa JOIN questions q ON q.id = aa.question_id
				WHERE aa.attempt_id = a.id AND q.type = ? AND aa.reviewer_id IS NULL) AS pending_answers,
			(SELECT COUNT(*) FROM questions q WHERE q.assessment_id = a.assessment_id AND q.type = ?) AS total_open_questions`,
			model.QuestionTypeOpen, model.QuestionTypeOpen).
		Joins("LEFT JOIN accounts acc ON acc.id = a.user_id").
		Order("a.submitted_at ASC").
		Order("a.id ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	return rows, total, nil
}
