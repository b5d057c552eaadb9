package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	for k := Kind(0); k < KindCount; k++ {
		assert.NotEmpty(t, kindCodes[k], "kind %d has no code", k)
	}
	assert.Equal(t, "ATTEMPT_EXPIRED", KindAttemptExpired.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := New(KindAnswerNotReviewable, "ReviewOpenAnswer", "answer already reviewed")
	wrapped := fmt.Errorf("outer: %w", err)

	assert.True(t, errors.Is(wrapped, ErrAnswerNotReviewable))
	assert.False(t, errors.Is(wrapped, ErrAttemptNotFound))
	assert.Equal(t, KindAnswerNotReviewable, KindOf(wrapped))
}

func TestKindOfForeignErrorIsRepository(t *testing.T) {
	assert.Equal(t, KindRepository, KindOf(errors.New("connection reset")))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("boom")
	err := Repository("StartAttempt", cause)
	assert.Equal(t, "StartAttempt: repository failure: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "NO_ANSWERS_FOUND", (&Error{Kind: KindNoAnswersFound}).Error())
}
