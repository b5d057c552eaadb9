package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/model"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/rs/zerolog/log"
)

const defaultPassingScore = 70

type AdminAssessmentService interface {
	CreateAssessment(ctx context.Context, req dto.AssessmentCreateDTO) (*dto.AssessmentResponse, error)
}

type adminAssessmentService struct {
	accountRepo    repository.AccountRepository
	assessmentRepo repository.AssessmentRepository
}

func NewAdminAssessmentService(accountRepo repository.AccountRepository, assessmentRepo repository.AssessmentRepository) AdminAssessmentService {
	return &adminAssessmentService{accountRepo: accountRepo, assessmentRepo: assessmentRepo}
}

func (s *adminAssessmentService) CreateAssessment(ctx context.Context, req dto.AssessmentCreateDTO) (*dto.AssessmentResponse, error) {
	const op = "CreateAssessment"
	if err := validateRequest(op, req); err != nil {
		return nil, err
	}

	requester, err := s.accountRepo.FindByID(ctx, req.RequesterID)
	if err != nil {
		return nil, lookupError(op, apperror.KindUserNotFound, "user", err)
	}
	if !requester.IsAdmin() {
		return nil, apperror.New(apperror.KindInsufficientPermissions, op, "admin role required")
	}

	assessment, err := buildAssessment(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, op, "invalid assessment", err)
	}

	if err := s.assessmentRepo.Create(ctx, assessment); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("CreateAssessment: Failed to create assessment in database")
		return nil, apperror.Repository(op, err)
	}

	created, err := s.assessmentRepo.FindByID(ctx, assessment.ID)
	if err != nil {
		log.Error().Err(err).Str("assessmentID", assessment.ID).Msg("CreateAssessment: Failed to retrieve newly created assessment")
		created = assessment
	}
	resp, err := toAssessmentResponse(created)
	if err != nil {
		log.Error().Err(err).Str("assessmentID", assessment.ID).Msg("CreateAssessment: Failed to copy assessment to DTO")
		return nil, apperror.Repository(op, err)
	}
	log.Info().Str("assessmentID", assessment.ID).Str("type", req.Type).Int("questions", len(req.Questions)).Msg("CreateAssessment: Assessment created")
	return resp, nil
}

// buildAssessment checks the structural rules that tags cannot express and assembles the
// model with ids assigned up front, so questions can point at their arguments.
func buildAssessment(req dto.AssessmentCreateDTO) (*model.Assessment, error) {
	assessmentType := model.AssessmentType(req.Type)
	if assessmentType != model.AssessmentTypeSimulado {
		if len(req.Arguments) > 0 {
			return nil, errors.New("only SIMULADO assessments can declare arguments")
		}
		if req.TimeLimitInMinutes != nil {
			return nil, errors.New("only SIMULADO assessments can have a time limit")
		}
	}

	assessment := &model.Assessment{
		ID:                 uuid.NewString(),
		Title:              strings.TrimSpace(req.Title),
		Type:               assessmentType,
		PassingScore:       defaultPassingScore,
		TimeLimitInMinutes: req.TimeLimitInMinutes,
	}
	if req.PassingScore != nil {
		assessment.PassingScore = *req.PassingScore
	}

	for i, a := range req.Arguments {
		assessment.Arguments = append(assessment.Arguments, model.Argument{
			ID:           uuid.NewString(),
			AssessmentID: assessment.ID,
			Title:        strings.TrimSpace(a.Title),
			Position:     i + 1,
		})
	}

	for i, qDto := range req.Questions {
		question := model.Question{
			ID:           uuid.NewString(),
			AssessmentID: assessment.ID,
			Text:         qDto.Text,
			Type:         model.QuestionType(qDto.Type),
			Position:     i + 1,
		}
		if qDto.ArgumentIndex != nil {
			if *qDto.ArgumentIndex >= len(assessment.Arguments) {
				return nil, fmt.Errorf("question %d references unknown argument %d", i+1, *qDto.ArgumentIndex)
			}
			argumentID := assessment.Arguments[*qDto.ArgumentIndex].ID
			question.ArgumentID = &argumentID
		}

		key := &model.AnswerKey{QuestionID: question.ID, Explanation: strings.TrimSpace(qDto.Explanation)}
		switch question.Type {
		case model.QuestionTypeMultipleChoice:
			if len(qDto.Options) < 2 {
				return nil, fmt.Errorf("question %d needs at least 2 options", i+1)
			}
			if qDto.CorrectOptionIndex == nil || *qDto.CorrectOptionIndex >= len(qDto.Options) {
				return nil, fmt.Errorf("question %d needs a correct_option_index between 0 and %d", i+1, len(qDto.Options)-1)
			}
			for j, o := range qDto.Options {
				option := model.QuestionOption{
					ID:         uuid.NewString(),
					QuestionID: question.ID,
					Text:       o.Text,
					Position:   j + 1,
				}
				if j == *qDto.CorrectOptionIndex {
					correct := option.ID
					key.CorrectOptionID = &correct
				}
				question.Options = append(question.Options, option)
			}
		case model.QuestionTypeOpen:
			if len(qDto.Options) > 0 || qDto.CorrectOptionIndex != nil {
				return nil, fmt.Errorf("open question %d cannot have options", i+1)
			}
			if key.Explanation == "" {
				return nil, fmt.Errorf("open question %d needs an explanation to review against", i+1)
			}
		}
		question.AnswerKey = key
		assessment.Questions = append(assessment.Questions, question)
	}
	return assessment, nil
}
