package service

import (
	"context"
	"errors"

	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/rs/zerolog/log"
)

// AssessmentService shows an assessment to the student taking it. Answer keys are never exposed.
type AssessmentService interface {
	GetAssessment(ctx context.Context, id string) (*dto.AssessmentResponse, error)
}

type assessmentService struct {
	assessmentRepo repository.AssessmentRepository
}

func NewAssessmentService(assessmentRepo repository.AssessmentRepository) AssessmentService {
	return &assessmentService{assessmentRepo: assessmentRepo}
}

func (s *assessmentService) GetAssessment(ctx context.Context, id string) (*dto.AssessmentResponse, error) {
	const op = "GetAssessment"
	if err := validate.Var(id, "required,uuid"); err != nil {
		return nil, apperror.New(apperror.KindInvalidInput, op, "assessment id must be a valid UUID")
	}

	assessment, err := s.assessmentRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("assessmentID", id).Msg("GetAssessment: Failed to get assessment from repository")
		}
		return nil, lookupError(op, apperror.KindAssessmentNotFound, "assessment", err)
	}

	resp, err := toAssessmentResponse(assessment)
	if err != nil {
		log.Error().Err(err).Str("assessmentID", id).Msg("GetAssessment: Failed to copy assessment to DTO")
		return nil, apperror.Repository(op, err)
	}
	return resp, nil
}
