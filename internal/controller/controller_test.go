package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperror.New(apperror.KindInvalidInput, "op", "bad"), http.StatusBadRequest},
		{apperror.New(apperror.KindAttemptNotFound, "op", "missing"), http.StatusNotFound},
		{apperror.New(apperror.KindInsufficientPermissions, "op", "no"), http.StatusForbidden},
		{apperror.New(apperror.KindAttemptExpired, "op", "late"), http.StatusConflict},
		{apperror.New(apperror.KindAnswerNotReviewable, "op", "done"), http.StatusConflict},
		{apperror.New(apperror.KindNoAnswersFound, "op", "empty"), http.StatusUnprocessableEntity},
		{apperror.Repository("op", errors.New("connection reset")), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
		{service.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: timeout", service.ErrLLMFailed), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestStatusFor_CoversEveryKind(t *testing.T) {
	for k := apperror.Kind(0); k < apperror.KindCount; k++ {
		assert.NotZero(t, StatusFor(apperror.New(k, "op", "")), k.String())
	}
}

func render(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RenderError(c, "Test", err)
	return w
}

func TestRenderError(t *testing.T) {
	w := render(apperror.New(apperror.KindAttemptNotActive, "SubmitAnswer", "attempt is GRADED"))
	require.Equal(t, http.StatusConflict, w.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ATTEMPT_NOT_ACTIVE", body.Code)
	assert.Equal(t, "SubmitAnswer: attempt is GRADED", body.Message)
}

func TestRenderError_HidesInternalDetails(t *testing.T) {
	w := render(apperror.Repository("SubmitAttempt", errors.New("pq: password authentication failed")))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Body.String(), "REPOSITORY_ERROR")

	w = render(service.ErrLLMUnavailable)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "LLM_UNAVAILABLE")
}
