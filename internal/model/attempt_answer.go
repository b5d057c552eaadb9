package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerStatus string

const (
	AnswerStatusInProgress AnswerStatus = "IN_PROGRESS"
	AnswerStatusSubmitted  AnswerStatus = "SUBMITTED"
	AnswerStatusGraded     AnswerStatus = "GRADED"
)

// AttemptAnswer is the recorded response to one question of an attempt.
// Exactly one of SelectedOptionID and TextAnswer is set. For OPEN questions
// IsCorrect and ReviewerID are written together, once.
type AttemptAnswer struct {
	ID               string       `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID        string       `json:"attempt_id" gorm:"type:uuid;not null;uniqueIndex:idx_attempt_answers_attempt_question"`
	QuestionID       string       `json:"question_id" gorm:"type:uuid;not null;uniqueIndex:idx_attempt_answers_attempt_question;index"`
	Question         *Question    `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	SelectedOptionID *string      `json:"selected_option_id,omitempty" gorm:"type:uuid"`
	TextAnswer       *string      `json:"text_answer,omitempty" gorm:"type:text"`
	Status           AnswerStatus `json:"status" gorm:"type:varchar(20);not null"`
	IsCorrect        *bool        `json:"is_correct,omitempty"`
	TeacherComment   *string      `json:"teacher_comment,omitempty" gorm:"type:text"`
	ReviewerID       *string      `json:"reviewer_id,omitempty" gorm:"type:uuid;index"`
	ReviewedAt       *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (a *AttemptAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
