package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lshigami/examhub/internal/model"
	"github.com/lshigami/examhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAttempt(userID, assessmentID string, status model.AttemptStatus, startedAt time.Time) *model.Attempt {
	return &model.Attempt{
		UserID:       userID,
		AssessmentID: assessmentID,
		Status:       status,
		StartedAt:    startedAt,
	}
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageSize, Offset: 0}, NewPage(0, 0))
	assert.Equal(t, Page{Limit: 20, Offset: 40}, NewPage(3, 20))
	assert.Equal(t, Page{Limit: MaxPageSize, Offset: 0}, NewPage(1, 1000))
	assert.Equal(t, Page{Limit: 5, Offset: 0}, NewPage(-2, 5))
}

func TestAttemptRepository_CreateRejectsSecondActiveAttempt(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewAttemptRepository(db)
	user := testutil.SeedAccount(t, db, model.RoleStudent)
	quiz := testutil.SeedAssessment(t, db, testutil.AssessmentSpec{Type: model.AssessmentTypeQuiz, Questions: []testutil.QuestionSpec{testutil.MC()}})

	first := newAttempt(user.ID, quiz.ID, model.AttemptStatusInProgress, time.Now())
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, newAttempt(user.ID, quiz.ID, model.AttemptStatusInProgress, time.Now()))
	assert.ErrorIs(t, err, ErrActiveAttemptExists)

	active, err := repo.FindActive(ctx, user.ID, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
}

func TestAttemptRepository_FinishedAttemptsDoNotBlockNewOne(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewAttemptRepository(db)
	user := testutil.SeedAccount(t, db, model.RoleStudent)
	quiz := testutil.SeedAssessment(t, db, testutil.AssessmentSpec{Type: model.AssessmentTypeQuiz, Questions: []testutil.QuestionSpec{testutil.MC()}})

	require.NoError(t, repo.Create(ctx, newAttempt(user.ID, quiz.ID, model.AttemptStatusGraded, time.Now())))
	require.NoError(t, repo.Create(ctx, newAttempt(user.ID, quiz.ID, model.AttemptStatusSubmitted, time.Now())))
	require.NoError(t, repo.Create(ctx, newAttempt(user.ID, quiz.ID, model.AttemptStatusInProgress, time.Now())))
}

func TestAttemptRepository_FindActiveMissing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAttemptRepository(db)

	_, err := repo.FindActive(context.Background(), "00000000-0000-0000-0000-000000000001", "00000000-0000-0000-0000-000000000002")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAttemptRepository_TransitionStatusIsConditional(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewAttemptRepository(db)
	user := testutil.SeedAccount(t, db, model.RoleStudent)
	quiz := testutil.SeedAssessment(t, db, testutil.AssessmentSpec{Type: model.AssessmentTypeQuiz, Questions: []testutil.QuestionSpec{testutil.MC()}})

	attempt := newAttempt(user.ID, quiz.ID, model.AttemptStatusInProgress, time.Now())
	require.NoError(t, repo.Create(ctx, attempt))

	now := time.Now()
	moved, err := repo.TransitionStatus(ctx, attempt.ID, model.AttemptStatusInProgress, map[string]interface{}{
		"status":       model.AttemptStatusSubmitted,
		"submitted_at": now,
	})
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repo.TransitionStatus(ctx, attempt.ID, model.AttemptStatusInProgress, map[string]interface{}{
		"status": model.AttemptStatusGraded,
	})
	require.NoError(t, err)
	assert.False(t, moved)

	stored, err := repo.FindByID(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusSubmitted, stored.Status)
	assert.NotNil(t, stored.SubmittedAt)
}

func TestAttemptRepository_TransitionStatusInsideRolledBackTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewAttemptRepository(db)
	user := testutil.SeedAccount(t, db, model.RoleStudent)
	quiz := testutil.SeedAssessment(t, db, testutil.AssessmentSpec{Type: model.AssessmentTypeQuiz, Questions: []testutil.QuestionSpec{testutil.MC()}})

	attempt := newAttempt(user.ID, quiz.ID, model.AttemptStatusInProgress, time.Now())
	require.NoError(t, repo.Create(ctx, attempt))

	err := db.Transaction(func(tx *gorm.DB) error {
		moved, err := repo.WithTx(tx).TransitionStatus(ctx, attempt.ID, model.AttemptStatusInProgress, map[string]interface{}{
			"status": model.AttemptStatusSubmitted,
		})
		require.NoError(t, err)
		require.True(t, moved)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	stored, err := repo.FindByID(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusInProgress, stored.Status)
}

func TestAttemptRepository_ListFiltersAndSorts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewAttemptRepository(db)
	alice := testutil.SeedAccount(t, db, model.RoleStudent)
	bob := testutil.SeedAccount(t, db, model.RoleStudent)
	quiz := testutil.SeedAssessment(t, db, testutil.AssessmentSpec{Type: model.AssessmentTypeQuiz, Questions: []testutil.QuestionSpec{testutil.MC()}})
	exam := testutil.SeedAssessment(t, db, testutil.AssessmentSpec{Type: model.AssessmentTypeProvaAberta, Questions: []testutil.QuestionSpec{testutil.Open()}})

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a1 := newAttempt(alice.ID, quiz.ID, model.AttemptStatusGraded, base)
	a1.Score = testutil.IntPtr(80)
	a2 := newAttempt(alice.ID, exam.ID, model.AttemptStatusSubmitted, base.Add(time.Hour))
	a3 := newAttempt(alice.ID, quiz.ID, model.AttemptStatusInProgress, base.Add(2*time.Hour))
	b1 := newAttempt(bob.ID, quiz.ID, model.AttemptStatusGraded, base.Add(30*time.Minute))
	b1.Score = testutil.IntPtr(40)
	for _, a := range []*model.Attempt{a1, a2, a3, b1} {
		require.NoError(t, repo.Create(ctx, a))
	}

	all, total, err := repo.List(ctx, AttemptFilters{Page: NewPage(1, 10)})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, all, 4)
	assert.Equal(t, []string{a3.ID, a2.ID, b1.ID, a1.ID}, attemptIDs(all), "default order is startedAt desc")
	require.NotNil(t, all[0].Assessment)
	assert.Equal(t, quiz.Title, all[0].Assessment.Title)

	userID := alice.ID
	mine, total, err := repo.List(ctx, AttemptFilters{UserID: &userID, SortBy: "startedAt", SortOrder: "asc", Page: NewPage(1, 10)})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{a1.ID, a2.ID, a3.ID}, attemptIDs(mine))

	graded := model.AttemptStatusGraded
	byScore, _, err := repo.List(ctx, AttemptFilters{Status: &graded, SortBy: "score", SortOrder: "desc", Page: NewPage(1, 10)})
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, b1.ID}, attemptIDs(byScore))

	assessmentID := quiz.ID
	paged, total, err := repo.List(ctx, AttemptFilters{AssessmentID: &assessmentID, Page: NewPage(2, 2)})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{a1.ID}, attemptIDs(paged))
}

func TestAttemptRepository_ListPendingReview(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewAttemptRepository(db)
	answers := NewAttemptAnswerRepository(db)
	alice := testutil.SeedAccount(t, db, model.RoleStudent)
	bob := testutil.SeedAccount(t, db, model.RoleStudent)
	tutor := testutil.SeedAccount(t, db, model.RoleTutor)
	exam := testutil.SeedAssessment(t, db, testutil.AssessmentSpec{
		Type:      model.AssessmentTypeProvaAberta,
		Questions: []testutil.QuestionSpec{testutil.Open(), testutil.Open(), testutil.MC()},
	})
	quiz := testutil.SeedAssessment(t, db, testutil.AssessmentSpec{Type: model.AssessmentTypeQuiz, Questions: []testutil.QuestionSpec{testutil.Open()}})

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	submitted := func(userID, assessmentID string, at time.Time) *model.Attempt {
		a := newAttempt(userID, assessmentID, model.AttemptStatusSubmitted, at.Add(-time.Hour))
		a.SubmittedAt = &at
		require.NoError(t, repo.Create(ctx, a))
		return a
	}
	later := submitted(alice.ID, exam.ID, base.Add(time.Hour))
	earlier := submitted(bob.ID, exam.ID, base)
	submitted(alice.ID, quiz.ID, base.Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, newAttempt(bob.ID, exam.ID, model.AttemptStatusInProgress, base)))

	text := "an essay"
	for _, q := range exam.Questions[:2] {
		_, err := answers.Upsert(ctx, &model.AttemptAnswer{AttemptID: earlier.ID, QuestionID: q.ID, TextAnswer: &text, Status: model.AnswerStatusSubmitted})
		require.NoError(t, err)
	}
	reviewed, err := answers.FindByAttemptAndQuestion(ctx, earlier.ID, exam.Questions[0].ID)
	require.NoError(t, err)
	ok, err := answers.MarkReviewed(ctx, reviewed.ID, tutor.ID, true, nil, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	rows, total, err := repo.ListPendingReview(ctx, NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)

	assert.Equal(t, earlier.ID, rows[0].AttemptID)
	assert.Equal(t, bob.Name, rows[0].UserName)
	assert.Equal(t, exam.Title, rows[0].AssessmentTitle)
	assert.EqualValues(t, 1, rows[0].PendingAnswers)
	assert.EqualValues(t, 2, rows[0].TotalOpenQuestions)

	assert.Equal(t, later.ID, rows[1].AttemptID)
	assert.EqualValues(t, 0, rows[1].PendingAnswers)
	assert.EqualValues(t, 2, rows[1].TotalOpenQuestions)

	page2, total, err := repo.ListPendingReview(ctx, NewPage(2, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page2, 1)
	assert.Equal(t, later.ID, page2[0].AttemptID)
}

func attemptIDs(attempts []model.Attempt) []string {
	ids := make([]string, len(attempts))
	for i, a := range attempts {
		ids[i] = a.ID
	}
	return ids
}
