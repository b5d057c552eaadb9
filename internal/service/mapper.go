package service

import (
	"errors"

	"github.com/jinzhu/copier"
	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/model"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/rs/zerolog/log"
)

// lookupError turns a repository miss into the given kind and anything else into a
// RepositoryError.
func lookupError(op string, kind apperror.Kind, what string, err error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return apperror.New(kind, op, what+" not found")
	}
	return apperror.Repository(op, err)
}

func toAttemptResponse(attempt *model.Attempt) dto.AttemptResponse {
	var resp dto.AttemptResponse
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Str("attemptID", attempt.ID).Msg("Failed to copy attempt to DTO")
	}
	return resp
}

func toAnswerResponse(answer *model.AttemptAnswer) dto.AnswerResponse {
	var resp dto.AnswerResponse
	if err := copier.Copy(&resp, answer); err != nil {
		log.Error().Err(err).Str("answerID", answer.ID).Msg("Failed to copy answer to DTO")
	}
	return resp
}

func toAssessmentResponse(assessment *model.Assessment) (*dto.AssessmentResponse, error) {
	var resp dto.AssessmentResponse
	if err := copier.Copy(&resp, assessment); err != nil {
		return nil, err
	}
	return &resp, nil
}

func intPtr(v int) *int { return &v }
