// Package controller holds what the gin handlers share: error rendering and caller identity.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/middleware"
	"github.com/lshigami/examhub/internal/service"
	"github.com/rs/zerolog/log"
)

var kindStatus = [...]int{
	apperror.KindInvalidInput:            http.StatusBadRequest,
	apperror.KindUserNotFound:            http.StatusNotFound,
	apperror.KindAssessmentNotFound:      http.StatusNotFound,
	apperror.KindQuestionNotFound:        http.StatusNotFound,
	apperror.KindAttemptNotFound:         http.StatusNotFound,
	apperror.KindAttemptAnswerNotFound:   http.StatusNotFound,
	apperror.KindAttemptNotActive:        http.StatusConflict,
	apperror.KindAttemptExpired:          http.StatusConflict,
	apperror.KindAttemptNotFinalized:     http.StatusConflict,
	apperror.KindNoAnswersFound:          http.StatusUnprocessableEntity,
	apperror.KindInvalidAnswerType:       http.StatusUnprocessableEntity,
	apperror.KindAnswerNotReviewable:     http.StatusConflict,
	apperror.KindInsufficientPermissions: http.StatusForbidden,
	apperror.KindRepository:              http.StatusInternalServerError,
}

// Every Kind needs a status.
var _ [0]struct{} = [len(kindStatus) - int(apperror.KindCount)]struct{}{}

// StatusFor maps an error returned by a service to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrLLMFailed):
		return http.StatusBadGateway
	}
	return kindStatus[apperror.KindOf(err)]
}

// RenderError writes err as a dto.ErrorResponse. Infrastructure faults are logged and
// their details withheld from the client.
func RenderError(c *gin.Context, op string, err error) {
	status := StatusFor(err)
	resp := dto.ErrorResponse{Code: apperror.KindOf(err).String(), Message: err.Error()}

	switch {
	case errors.Is(err, service.ErrLLMUnavailable):
		resp = dto.ErrorResponse{Code: "LLM_UNAVAILABLE", Message: "review suggestions are not configured"}
	case errors.Is(err, service.ErrLLMFailed):
		log.Error().Err(err).Str("path", c.FullPath()).Msg(op + ": Language model error")
		resp = dto.ErrorResponse{Code: "LLM_FAILED", Message: "the language model did not return a usable answer"}
	case status >= http.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(op + ": Internal error")
		resp.Message = "internal server error"
	default:
		log.Debug().Err(err).Str("path", c.FullPath()).Int("status", status).Msg(op + ": Request rejected")
	}
	c.JSON(status, resp)
}

// BadRequest answers a request whose body or query could not be bound.
func BadRequest(c *gin.Context, op string, err error) {
	log.Warn().Err(err).Str("path", c.FullPath()).Msg(op + ": Failed to bind request")
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    apperror.KindInvalidInput.String(),
		Message: "invalid request: " + err.Error(),
	})
}

// CallerID is the account id placed in the context by the auth middleware.
func CallerID(c *gin.Context) string {
	return middleware.UserID(c)
}

// Health godoc
// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
