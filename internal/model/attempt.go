package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusSubmitted  AttemptStatus = "SUBMITTED"
	AttemptStatusGrading    AttemptStatus = "GRADING"
	AttemptStatusGraded     AttemptStatus = "GRADED"
)

func (s AttemptStatus) Valid() bool {
	switch s {
	case AttemptStatusInProgress, AttemptStatusSubmitted, AttemptStatusGrading, AttemptStatusGraded:
		return true
	}
	return false
}

// Attempt is one user's run through an assessment. Score is set iff Status is GRADED.
// The partial unique index idx_attempts_active_user_assessment (see database.Migrate)
// keeps a single IN_PROGRESS attempt per user and assessment.
type Attempt struct {
	ID                 string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             string          `json:"user_id" gorm:"type:uuid;not null;index"`
	AssessmentID       string          `json:"assessment_id" gorm:"type:uuid;not null;index"`
	Assessment         *Assessment     `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
	Status             AttemptStatus   `json:"status" gorm:"type:varchar(20);not null;index"`
	Score              *int            `json:"score,omitempty"`
	StartedAt          time.Time       `json:"started_at" gorm:"not null"`
	SubmittedAt        *time.Time      `json:"submitted_at,omitempty" gorm:"index"`
	GradedAt           *time.Time      `json:"graded_at,omitempty"`
	TimeLimitExpiresAt *time.Time      `json:"time_limit_expires_at,omitempty"`
	Answers            []AttemptAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the attempt's time limit has passed at the given instant.
func (a *Attempt) Expired(now time.Time) bool {
	return a.TimeLimitExpiresAt != nil && now.After(*a.TimeLimitExpiresAt)
}
