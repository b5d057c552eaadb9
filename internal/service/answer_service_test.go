package service

import (
	"testing"

	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/model"
	"github.com/lshigami/examhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAnswer_MultipleChoiceIsGradedOnEntry(t *testing.T) {
	env := newTestEnv(t)
	user := env.student(t)
	quiz := env.quiz(t, 2, 70)
	attempt := env.start(t, user.ID, quiz.ID)
	q := quiz.Questions[0]

	resp := env.answerOption(t, attempt.ID, user.ID, q, true)
	assert.Equal(t, model.AnswerStatusInProgress, resp.Status)
	assert.Nil(t, resp.IsCorrect, "correctness is hidden while the attempt is open")
	require.NotNil(t, resp.SelectedOptionID)
	assert.Equal(t, testutil.CorrectOption(q), *resp.SelectedOptionID)

	stored, err := env.answerRepo.FindByID(env.ctx, resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.IsCorrect)
	assert.True(t, *stored.IsCorrect)
}

func TestSubmitAnswer_ReplacesPreviousAnswer(t *testing.T) {
	env := newTestEnv(t)
	user := env.student(t)
	quiz := env.quiz(t, 1, 70)
	attempt := env.start(t, user.ID, quiz.ID)
	q := quiz.Questions[0]

	first := env.answerOption(t, attempt.ID, user.ID, q, true)
	second := env.answerOption(t, attempt.ID, user.ID, q, false)
	assert.Equal(t, first.ID, second.ID)

	count, err := env.answerRepo.CountByAttempt(env.ctx, attempt.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	stored, err := env.answerRepo.FindByID(env.ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.IsCorrect)
	assert.False(t, *stored.IsCorrect)
	assert.Equal(t, testutil.WrongOption(q), *stored.SelectedOptionID)
}

func TestSubmitAnswer_OpenQuestionStoresText(t *testing.T) {
	env := newTestEnv(t)
	user := env.student(t)
	exam := testutil.SeedAssessment(t, env.db, testutil.AssessmentSpec{
		Type:      model.AssessmentTypeProvaAberta,
		Questions: []testutil.QuestionSpec{testutil.Open()},
	})
	attempt := env.start(t, user.ID, exam.ID)

	resp := env.answerText(t, attempt.ID, user.ID, exam.Questions[0], "Photosynthesis converts light.")
	require.NotNil(t, resp.TextAnswer)
	assert.Equal(t, "Photosynthesis converts light.", *resp.TextAnswer)
	assert.Nil(t, resp.SelectedOptionID)

	stored, err := env.answerRepo.FindByID(env.ctx, resp.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.IsCorrect)
	assert.Nil(t, stored.ReviewerID)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	env := newTestEnv(t)
	owner := env.student(t)
	other := env.student(t)
	exam := testutil.SeedAssessment(t, env.db, testutil.AssessmentSpec{
		Type:      model.AssessmentTypeProvaAberta,
		Questions: []testutil.QuestionSpec{testutil.MC(), testutil.Open()},
	})
	foreign := env.quiz(t, 1, 70)
	attempt := env.start(t, owner.ID, exam.ID)
	mc, open := exam.Questions[0], exam.Questions[1]
	correct := testutil.CorrectOption(mc)
	optionOfOtherQuestion := testutil.CorrectOption(foreign.Questions[0])

	tests := []struct {
		name string
		req  dto.SubmitAnswerRequest
		kind apperror.Kind
	}{
		{
			name: "both fields set",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: owner.ID, QuestionID: mc.ID, SelectedOptionID: &correct, TextAnswer: strPtr("x")},
			kind: apperror.KindInvalidInput,
		},
		{
			name: "malformed question id",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: owner.ID, QuestionID: "q1", SelectedOptionID: &correct},
			kind: apperror.KindInvalidInput,
		},
		{
			name: "unknown attempt",
			req:  dto.SubmitAnswerRequest{AttemptID: unknownID, UserID: owner.ID, QuestionID: mc.ID, SelectedOptionID: &correct},
			kind: apperror.KindAttemptNotFound,
		},
		{
			name: "not the owner",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: other.ID, QuestionID: mc.ID, SelectedOptionID: &correct},
			kind: apperror.KindInsufficientPermissions,
		},
		{
			name: "unknown question",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: owner.ID, QuestionID: unknownID, SelectedOptionID: &correct},
			kind: apperror.KindQuestionNotFound,
		},
		{
			name: "question of another assessment",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: owner.ID, QuestionID: foreign.Questions[0].ID, SelectedOptionID: &optionOfOtherQuestion},
			kind: apperror.KindQuestionNotFound,
		},
		{
			name: "text for multiple choice",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: owner.ID, QuestionID: mc.ID, TextAnswer: strPtr("B")},
			kind: apperror.KindInvalidAnswerType,
		},
		{
			name: "option for open question",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: owner.ID, QuestionID: open.ID, SelectedOptionID: &correct},
			kind: apperror.KindInvalidAnswerType,
		},
		{
			name: "blank text for open question",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: owner.ID, QuestionID: open.ID, TextAnswer: strPtr("   ")},
			kind: apperror.KindInvalidAnswerType,
		},
		{
			name: "nothing supplied",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: owner.ID, QuestionID: open.ID},
			kind: apperror.KindInvalidAnswerType,
		},
		{
			name: "option of another question",
			req:  dto.SubmitAnswerRequest{AttemptID: attempt.ID, UserID: owner.ID, QuestionID: mc.ID, SelectedOptionID: &optionOfOtherQuestion},
			kind: apperror.KindInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.attempts.SubmitAnswer(env.ctx, tt.req)
			assertKind(t, err, tt.kind)
		})
	}

	count, err := env.answerRepo.CountByAttempt(env.ctx, attempt.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSubmitAnswer_RejectedAfterSubmission(t *testing.T) {
	env := newTestEnv(t)
	user := env.student(t)
	quiz := env.quiz(t, 2, 70)
	attempt := env.start(t, user.ID, quiz.ID)
	env.answerOption(t, attempt.ID, user.ID, quiz.Questions[0], true)
	env.submit(t, attempt.ID, user.ID)

	option := testutil.CorrectOption(quiz.Questions[1])
	_, err := env.attempts.SubmitAnswer(env.ctx, dto.SubmitAnswerRequest{
		AttemptID:        attempt.ID,
		UserID:           user.ID,
		QuestionID:       quiz.Questions[1].ID,
		SelectedOptionID: &option,
	})
	assertKind(t, err, apperror.KindAttemptNotActive)
}
