package dto

import (
	"time"

	"github.com/lshigami/examhub/internal/model"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AttemptResponse struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"user_id"`
	AssessmentID       string              `json:"assessment_id"`
	Status             model.AttemptStatus `json:"status"`
	Score              *int                `json:"score"`
	StartedAt          time.Time           `json:"started_at"`
	SubmittedAt        *time.Time          `json:"submitted_at,omitempty"`
	GradedAt           *time.Time          `json:"graded_at,omitempty"`
	TimeLimitExpiresAt *time.Time          `json:"time_limit_expires_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// StartAttemptResponse.IsNew is false when an IN_PROGRESS attempt already existed.
type StartAttemptResponse struct {
	Attempt AttemptResponse `json:"attempt"`
	IsNew   bool            `json:"is_new"`
}

type AnswerResponse struct {
	ID               string             `json:"id"`
	AttemptID        string             `json:"attempt_id"`
	QuestionID       string             `json:"question_id"`
	SelectedOptionID *string            `json:"selected_option_id,omitempty"`
	TextAnswer       *string            `json:"text_answer,omitempty"`
	Status           model.AnswerStatus `json:"status"`
	IsCorrect        *bool              `json:"is_correct,omitempty"`
	TeacherComment   *string            `json:"teacher_comment,omitempty"`
	ReviewerID       *string            `json:"reviewer_id,omitempty"`
	ReviewedAt       *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// SubmissionSummary omits the score fields while answers await review.
type SubmissionSummary struct {
	TotalQuestions    int   `json:"total_questions"`
	AnsweredQuestions int   `json:"answered_questions"`
	CorrectAnswers    *int  `json:"correct_answers,omitempty"`
	ScorePercentage   *int  `json:"score_percentage,omitempty"`
	Passed            *bool `json:"passed,omitempty"`
}

type SubmitAttemptResponse struct {
	Attempt AttemptResponse   `json:"attempt"`
	Summary SubmissionSummary `json:"summary"`
}

type ReviewAnswerResponse struct {
	Answer                   AnswerResponse      `json:"answer"`
	AttemptID                string              `json:"attempt_id"`
	AttemptStatus            model.AttemptStatus `json:"attempt_status"`
	AllOpenQuestionsReviewed bool                `json:"all_open_questions_reviewed"`
}

type AttemptListItem struct {
	AttemptResponse
	AssessmentTitle string               `json:"assessment_title"`
	AssessmentType  model.AssessmentType `json:"assessment_type"`
}

type AttemptListResponse struct {
	Items    []AttemptListItem `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type PendingReviewItem struct {
	AttemptID          string     `json:"attempt_id"`
	UserID             string     `json:"user_id"`
	UserName           string     `json:"user_name"`
	AssessmentID       string     `json:"assessment_id"`
	AssessmentTitle    string     `json:"assessment_title"`
	StartedAt          time.Time  `json:"started_at"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	PendingAnswers     int64      `json:"pending_answers"`
	TotalOpenQuestions int64      `json:"total_open_questions"`
}

type PendingReviewListResponse struct {
	Items    []PendingReviewItem `json:"items"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// ReviewSuggestionResponse is a draft produced by the language model. It is never stored.
type ReviewSuggestionResponse struct {
	AttemptAnswerID    string `json:"attempt_answer_id"`
	SuggestedIsCorrect *bool  `json:"suggested_is_correct"`
	SuggestedComment   string `json:"suggested_comment"`
}

type OptionResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

type QuestionResponse struct {
	ID         string             `json:"id"`
	ArgumentID *string            `json:"argument_id,omitempty"`
	Text       string             `json:"text"`
	Type       model.QuestionType `json:"type"`
	Position   int                `json:"position"`
	Options    []OptionResponse   `json:"options,omitempty"`
}

type ArgumentResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

type AssessmentResponse struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	Type               model.AssessmentType `json:"type"`
	PassingScore       int                  `json:"passing_score"`
	TimeLimitInMinutes *int                 `json:"time_limit_in_minutes,omitempty"`
	Arguments          []ArgumentResponse   `json:"arguments,omitempty"`
	Questions          []QuestionResponse   `json:"questions"`
	CreatedAt          time.Time            `json:"created_at"`
}
