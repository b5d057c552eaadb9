package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeOpen           QuestionType = "OPEN"
)

func (t QuestionType) Valid() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeOpen
}

type Question struct {
	ID           string           `gorm:"type:uuid;primaryKey" json:"id"`
	AssessmentID string           `json:"assessment_id" gorm:"type:uuid;not null;index"`
	ArgumentID   *string          `json:"argument_id,omitempty" gorm:"type:uuid;index"`
	Text         string           `json:"text" gorm:"type:text;not null"`
	Type         QuestionType     `json:"type" gorm:"type:varchar(20);not null"`
	Position     int              `json:"position" gorm:"not null"`
	Options      []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	AnswerKey    *AnswerKey       `json:"answer_key,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// Option looks up one of the question's options by id.
func (q *Question) Option(id string) (QuestionOption, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return QuestionOption{}, false
}

type QuestionOption struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID string    `json:"question_id" gorm:"type:uuid;not null;index"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	Position   int       `json:"position" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (o *QuestionOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// AnswerKey holds the correct option of a MULTIPLE_CHOICE question, or the rubric of an OPEN one.
type AnswerKey struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID      string    `json:"question_id" gorm:"type:uuid;not null;uniqueIndex"`
	CorrectOptionID *string   `json:"correct_option_id,omitempty" gorm:"type:uuid"`
	Explanation     string    `json:"explanation" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (k *AnswerKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}
