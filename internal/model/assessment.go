package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssessmentType string

const (
	AssessmentTypeQuiz        AssessmentType = "QUIZ"
	AssessmentTypeSimulado    AssessmentType = "SIMULADO"
	AssessmentTypeProvaAberta AssessmentType = "PROVA_ABERTA"
)

func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentTypeQuiz, AssessmentTypeSimulado, AssessmentTypeProvaAberta:
		return true
	}
	return false
}

// Assessment is owned by the content side of the platform; the attempt flow only reads it.
type Assessment struct {
	ID                 string         `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string         `json:"title" gorm:"not null"`
	Type               AssessmentType `json:"type" gorm:"type:varchar(20);not null;index"`
	PassingScore       int            `json:"passing_score" gorm:"not null"`
	TimeLimitInMinutes *int           `json:"time_limit_in_minutes,omitempty"`
	Questions          []Question     `json:"questions,omitempty" gorm:"foreignKey:AssessmentID"`
	Arguments          []Argument     `json:"arguments,omitempty" gorm:"foreignKey:AssessmentID"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// EffectiveTimeLimit returns the time limit that applies to attempts. Only SIMULADO assessments are timed.
func (a *Assessment) EffectiveTimeLimit() *time.Duration {
	if a.Type != AssessmentTypeSimulado || a.TimeLimitInMinutes == nil || *a.TimeLimitInMinutes <= 0 {
		return nil
	}
	d := time.Duration(*a.TimeLimitInMinutes) * time.Minute
	return &d
}

// Argument groups the questions of a SIMULADO for sub-score reporting.
type Argument struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	AssessmentID string    `json:"assessment_id" gorm:"type:uuid;not null;index"`
	Title        string    `json:"title" gorm:"not null"`
	Position     int       `json:"position" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Argument) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
