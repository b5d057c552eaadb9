package dto

import (
	"time"

	"github.com/lshigami/examhub/internal/model"
)

type AssessmentSummary struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	Type               model.AssessmentType `json:"type"`
	PassingScore       int                  `json:"passing_score"`
	TimeLimitInMinutes *int                 `json:"time_limit_in_minutes,omitempty"`
}

// ResultsBlock carries CorrectAnswers, ScorePercentage and Passed once every OPEN answer
// is reviewed, and ReviewedQuestions and PendingReview before that.
type ResultsBlock struct {
	TotalQuestions    int   `json:"total_questions"`
	AnsweredQuestions int   `json:"answered_questions"`
	TimeSpent         *int  `json:"time_spent,omitempty"` // minutes
	CorrectAnswers    *int  `json:"correct_answers,omitempty"`
	ScorePercentage   *int  `json:"score_percentage,omitempty"`
	Passed            *bool `json:"passed,omitempty"`
	ReviewedQuestions *int  `json:"reviewed_questions,omitempty"`
	PendingReview     *int  `json:"pending_review,omitempty"`
}

type AnswerDetail struct {
	AnswerID     string             `json:"answer_id"`
	QuestionID   string             `json:"question_id"`
	QuestionText string             `json:"question_text"`
	QuestionType model.QuestionType `json:"question_type"`
	Position     int                `json:"position"`
	Status       model.AnswerStatus `json:"status"`
	IsCorrect    *bool              `json:"is_correct,omitempty"`

	// MULTIPLE_CHOICE
	SelectedOptionID   *string `json:"selected_option_id,omitempty"`
	SelectedOptionText *string `json:"selected_option_text,omitempty"`
	CorrectOptionID    *string `json:"correct_option_id,omitempty"`
	CorrectOptionText  *string `json:"correct_option_text,omitempty"`
	Explanation        *string `json:"explanation,omitempty"`

	// OPEN
	TextAnswer     *string    `json:"text_answer,omitempty"`
	TeacherComment *string    `json:"teacher_comment,omitempty"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
}

// ArgumentResult is the sub-score of one argument. ArgumentID is nil for questions without one.
type ArgumentResult struct {
	ArgumentID      *string `json:"argument_id"`
	Title           string  `json:"title"`
	TotalQuestions  int     `json:"total_questions"`
	CorrectAnswers  int     `json:"correct_answers"`
	PendingReview   int     `json:"pending_review"`
	ScorePercentage int     `json:"score_percentage"`
}

type AttemptResultsResponse struct {
	Attempt         AttemptResponse   `json:"attempt"`
	Assessment      AssessmentSummary `json:"assessment"`
	Results         ResultsBlock      `json:"results"`
	Answers         []AnswerDetail    `json:"answers"`
	ArgumentResults []ArgumentResult  `json:"argument_results,omitempty"`
}
