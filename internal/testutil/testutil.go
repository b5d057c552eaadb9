// Package testutil provides a migrated SQLite database and fixture builders for tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/lshigami/examhub/database"
	"github.com/lshigami/examhub/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a fresh file-backed SQLite database under t.TempDir and migrates it.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.Disabled)

	path := filepath.Join(t.TempDir(), "examhub.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func SeedAccount(t *testing.T, db *gorm.DB, role model.Role) *model.Account {
	t.Helper()
	id := uuid.NewString()
	name := fmt.Sprintf("%s-%s", role, id[:8])
	account := &model.Account{ID: id, Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, db.Create(account).Error)
	return account
}

// QuestionSpec describes one question of a seeded assessment.
type QuestionSpec struct {
	Type          model.QuestionType
	ArgumentIndex *int
}

func MC() QuestionSpec   { return QuestionSpec{Type: model.QuestionTypeMultipleChoice} }
func Open() QuestionSpec { return QuestionSpec{Type: model.QuestionTypeOpen} }

// InArgument places the question under the i-th argument of the assessment.
func (q QuestionSpec) InArgument(i int) QuestionSpec {
	q.ArgumentIndex = &i
	return q
}

// AssessmentSpec describes an assessment to seed. MULTIPLE_CHOICE questions get
// three options with the first one correct.
type AssessmentSpec struct {
	Type               model.AssessmentType
	PassingScore       int
	TimeLimitInMinutes *int
	Arguments          []string
	Questions          []QuestionSpec
}

// SeedAssessment creates the assessment and reloads it with every association in position order.
func SeedAssessment(t *testing.T, db *gorm.DB, spec AssessmentSpec) *model.Assessment {
	t.Helper()
	assessment := &model.Assessment{
		Title:              fmt.Sprintf("%s assessment", spec.Type),
		Type:               spec.Type,
		PassingScore:       spec.PassingScore,
		TimeLimitInMinutes: spec.TimeLimitInMinutes,
	}
	require.NoError(t, db.Create(assessment).Error)

	argumentIDs := make([]string, len(spec.Arguments))
	for i, title := range spec.Arguments {
		arg := &model.Argument{AssessmentID: assessment.ID, Title: title, Position: i + 1}
		require.NoError(t, db.Create(arg).Error)
		argumentIDs[i] = arg.ID
	}

	for i, qs := range spec.Questions {
		q := &model.Question{
			AssessmentID: assessment.ID,
			Text:         fmt.Sprintf("Question %d", i+1),
			Type:         qs.Type,
			Position:     i + 1,
		}
		if qs.ArgumentIndex != nil {
			q.ArgumentID = &argumentIDs[*qs.ArgumentIndex]
		}
		require.NoError(t, db.Create(q).Error)

		key := &model.AnswerKey{QuestionID: q.ID, Explanation: fmt.Sprintf("Explanation %d", i+1)}
		if qs.Type == model.QuestionTypeMultipleChoice {
			for j := 0; j < 3; j++ {
				opt := &model.QuestionOption{QuestionID: q.ID, Text: fmt.Sprintf("Option %d.%d", i+1, j+1), Position: j + 1}
				require.NoError(t, db.Create(opt).Error)
				if j == 0 {
					correct := opt.ID
					key.CorrectOptionID = &correct
				}
			}
		}
		require.NoError(t, db.Create(key).Error)
	}

	var loaded model.Assessment
	err := db.WithContext(context.Background()).
		Preload("Arguments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Questions.AnswerKey").
		First(&loaded, "id = ?", assessment.ID).Error
	require.NoError(t, err)
	return &loaded
}

// CorrectOption returns the id of the correct option of a seeded MULTIPLE_CHOICE question.
func CorrectOption(q model.Question) string {
	return *q.AnswerKey.CorrectOptionID
}

// WrongOption returns the id of an incorrect option of a seeded MULTIPLE_CHOICE question.
func WrongOption(q model.Question) string {
	for _, o := range q.Options {
		if o.ID != *q.AnswerKey.CorrectOptionID {
			return o.ID
		}
	}
	panic("question has no wrong option")
}

func IntPtr(v int) *int { return &v }
