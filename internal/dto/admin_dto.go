package dto

// OptionCreateDTO is one choice of a MULTIPLE_CHOICE question.
type OptionCreateDTO struct {
	Text string `json:"text" validate:"required"`
}

// QuestionCreateDTO is used within AssessmentCreateDTO for admin assessment creation.
// CorrectOptionIndex and ArgumentIndex are zero-based positions in the request.
type QuestionCreateDTO struct {
	Text               string            `json:"text" validate:"required"`
	Type               string            `json:"type" validate:"required,oneof=MULTIPLE_CHOICE OPEN"`
	Options            []OptionCreateDTO `json:"options" validate:"omitempty,dive"`
	CorrectOptionIndex *int              `json:"correct_option_index" validate:"omitnil,min=0"`
	Explanation        string            `json:"explanation"`
	ArgumentIndex      *int              `json:"argument_index" validate:"omitnil,min=0"`
}

type ArgumentCreateDTO struct {
	Title string `json:"title" validate:"required"`
}

// AssessmentCreateDTO is for admin to create a new assessment with all its questions.
type AssessmentCreateDTO struct {
	RequesterID        string              `json:"-" validate:"required,uuid"`
	Title              string              `json:"title" validate:"required,max=255"`
	Type               string              `json:"type" validate:"required,oneof=QUIZ SIMULADO PROVA_ABERTA"`
	PassingScore       *int                `json:"passing_score" validate:"omitnil,min=0,max=100"`
	TimeLimitInMinutes *int                `json:"time_limit_in_minutes" validate:"omitnil,min=1"`
	Arguments          []ArgumentCreateDTO `json:"arguments" validate:"omitempty,dive"`
	Questions          []QuestionCreateDTO `json:"questions" validate:"required,min=1,dive"`
}
