package dto

// Identity fields tagged json:"-" are filled from the authenticated caller, never from the body.

type StartAttemptRequest struct {
	UserID       string `json:"-" validate:"required,uuid"`
	AssessmentID string `json:"assessment_id" validate:"required,uuid"`
}

// SubmitAnswerRequest carries exactly one of SelectedOptionID (MULTIPLE_CHOICE) or TextAnswer (OPEN).
type SubmitAnswerRequest struct {
	AttemptID        string  `json:"-" validate:"required,uuid"`
	UserID           string  `json:"-" validate:"required,uuid"`
	QuestionID       string  `json:"question_id" validate:"required,uuid"`
	SelectedOptionID *string `json:"selected_option_id" validate:"omitnil,uuid"`
	TextAnswer       *string `json:"text_answer" validate:"omitnil,max=20000"`
}

type SubmitAttemptRequest struct {
	AttemptID string `validate:"required,uuid"`
	UserID    string `validate:"required,uuid"`
}

type AttemptResultsRequest struct {
	AttemptID   string `validate:"required,uuid"`
	RequesterID string `validate:"required,uuid"`
}

type ListAttemptsRequest struct {
	RequesterID  string `form:"-" validate:"required,uuid"`
	Status       string `form:"status" validate:"omitempty,oneof=IN_PROGRESS SUBMITTED GRADING GRADED"`
	UserID       string `form:"user_id" validate:"omitempty,uuid"`
	AssessmentID string `form:"assessment_id" validate:"omitempty,uuid"`
	SortBy       string `form:"sort_by" validate:"omitempty,oneof=startedAt submittedAt score"`
	SortOrder    string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
	Page         int    `form:"page" validate:"min=0"`
	PageSize     int    `form:"page_size" validate:"min=0"`
}

type ReviewAnswerRequest struct {
	AttemptAnswerID string  `json:"-" validate:"required,uuid"`
	ReviewerID      string  `json:"-" validate:"required,uuid"`
	IsCorrect       *bool   `json:"is_correct" validate:"required"`
	TeacherComment  *string `json:"teacher_comment" validate:"omitnil,min=1,max=1000"`
}

type ListPendingReviewsRequest struct {
	ReviewerID string `form:"-" validate:"required,uuid"`
	Page       int    `form:"page" validate:"min=0"`
	PageSize   int    `form:"page_size" validate:"min=0"`
}

type ReviewSuggestionRequest struct {
	AttemptAnswerID string `validate:"required,uuid"`
	ReviewerID      string `validate:"required,uuid"`
}
