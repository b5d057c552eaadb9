package service

import (
	"context"
	"testing"
	"time"

	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/model"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/lshigami/examhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) Close() error { return nil }

type testEnv struct {
	ctx   context.Context
	db    *gorm.DB
	clock *fakeClock
	llm   *fakeLLM

	accountRepo repository.AccountRepository
	attemptRepo repository.AttemptRepository
	answerRepo  repository.AttemptAnswerRepository

	attempts    AttemptService
	reviews     ReviewService
	results     ResultService
	assistant   ReviewAssistantService
	admin       AdminAssessmentService
	assessments AssessmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	llm := &fakeLLM{}

	accountRepo := repository.NewAccountRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	answerRepo := repository.NewAttemptAnswerRepository(db)

	attempts := NewAttemptService(db, accountRepo, assessmentRepo, questionRepo, attemptRepo, answerRepo)
	attempts.(*attemptService).now = clock.Now
	reviews := NewReviewService(db, accountRepo, assessmentRepo, questionRepo, attemptRepo, answerRepo)
	reviews.(*reviewService).now = clock.Now

	return &testEnv{
		ctx:         context.Background(),
		db:          db,
		clock:       clock,
		llm:         llm,
		accountRepo: accountRepo,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		attempts:    attempts,
		reviews:     reviews,
		results:     NewResultService(accountRepo, assessmentRepo, attemptRepo, answerRepo),
		assistant:   NewReviewAssistantService(llm, accountRepo, questionRepo, attemptRepo, answerRepo),
		admin:       NewAdminAssessmentService(accountRepo, assessmentRepo),
		assessments: NewAssessmentService(assessmentRepo),
	}
}

func (e *testEnv) student(t *testing.T) *model.Account {
	return testutil.SeedAccount(t, e.db, model.RoleStudent)
}

func (e *testEnv) tutor(t *testing.T) *model.Account {
	return testutil.SeedAccount(t, e.db, model.RoleTutor)
}

func (e *testEnv) quiz(t *testing.T, questions int, passingScore int) *model.Assessment {
	specs := make([]testutil.QuestionSpec, questions)
	for i := range specs {
		specs[i] = testutil.MC()
	}
	return testutil.SeedAssessment(t, e.db, testutil.AssessmentSpec{
		Type:         model.AssessmentTypeQuiz,
		PassingScore: passingScore,
		Questions:    specs,
	})
}

func (e *testEnv) start(t *testing.T, userID, assessmentID string) dto.AttemptResponse {
	t.Helper()
	resp, err := e.attempts.StartAttempt(e.ctx, dto.StartAttemptRequest{UserID: userID, AssessmentID: assessmentID})
	require.NoError(t, err)
	return resp.Attempt
}

func (e *testEnv) answerOption(t *testing.T, attemptID, userID string, q model.Question, correct bool) *dto.AnswerResponse {
	t.Helper()
	option := testutil.WrongOption(q)
	if correct {
		option = testutil.CorrectOption(q)
	}
	resp, err := e.attempts.SubmitAnswer(e.ctx, dto.SubmitAnswerRequest{
		AttemptID:        attemptID,
		UserID:           userID,
		QuestionID:       q.ID,
		SelectedOptionID: &option,
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) answerText(t *testing.T, attemptID, userID string, q model.Question, text string) *dto.AnswerResponse {
	t.Helper()
	resp, err := e.attempts.SubmitAnswer(e.ctx, dto.SubmitAnswerRequest{
		AttemptID:  attemptID,
		UserID:     userID,
		QuestionID: q.ID,
		TextAnswer: &text,
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) submit(t *testing.T, attemptID, userID string) *dto.SubmitAttemptResponse {
	t.Helper()
	resp, err := e.attempts.SubmitAttempt(e.ctx, dto.SubmitAttemptRequest{AttemptID: attemptID, UserID: userID})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) review(t *testing.T, answerID, reviewerID string, correct bool) *dto.ReviewAnswerResponse {
	t.Helper()
	resp, err := e.reviews.ReviewOpenAnswer(e.ctx, dto.ReviewAnswerRequest{
		AttemptAnswerID: answerID,
		ReviewerID:      reviewerID,
		IsCorrect:       &correct,
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) storedAttempt(t *testing.T, id string) *model.Attempt {
	t.Helper()
	attempt, err := e.attemptRepo.FindByID(e.ctx, id)
	require.NoError(t, err)
	return attempt
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "unexpected error: %v", err)
}

const unknownID = "0b7a4c8e-6a40-4a8e-9a53-3a4f5b0f0c11"

func strPtr(s string) *string { return &s }
