package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/model"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SubmitAnswer records or replaces the answer to one question of an IN_PROGRESS attempt.
// MULTIPLE_CHOICE answers are graded as they are entered.
func (s *attemptService) SubmitAnswer(ctx context.Context, req dto.SubmitAnswerRequest) (*dto.AnswerResponse, error) {
	const op = "SubmitAnswer"
	if err := validateRequest(op, req); err != nil {
		return nil, err
	}
	if req.SelectedOptionID != nil && req.TextAnswer != nil {
		return nil, apperror.New(apperror.KindInvalidInput, op, "provide either selected_option_id or text_answer, not both")
	}

	attempt, err := s.attemptRepo.FindByID(ctx, req.AttemptID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("attemptID", req.AttemptID).Msg("SubmitAnswer: Failed to load attempt")
		}
		return nil, lookupError(op, apperror.KindAttemptNotFound, "attempt", err)
	}
	if attempt.UserID != req.UserID {
		return nil, apperror.New(apperror.KindInsufficientPermissions, op, "only the owner can answer this attempt")
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, apperror.Newf(apperror.KindAttemptNotActive, op, "attempt is %s", attempt.Status)
	}

	question, err := s.questionRepo.FindByID(ctx, req.QuestionID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("questionID", req.QuestionID).Msg("SubmitAnswer: Failed to load question")
		}
		return nil, lookupError(op, apperror.KindQuestionNotFound, "question", err)
	}
	if question.AssessmentID != attempt.AssessmentID {
		return nil, apperror.New(apperror.KindQuestionNotFound, op, "question not found in this assessment")
	}

	answer := &model.AttemptAnswer{
		AttemptID:  attempt.ID,
		QuestionID: question.ID,
		Status:     model.AnswerStatusInProgress,
	}
	switch question.Type {
	case model.QuestionTypeMultipleChoice:
		if req.SelectedOptionID == nil {
			return nil, apperror.New(apperror.KindInvalidAnswerType, op, "multiple choice questions require selected_option_id")
		}
		if _, ok := question.Option(*req.SelectedOptionID); !ok {
			return nil, apperror.New(apperror.KindInvalidInput, op, "selected option does not belong to the question")
		}
		key, err := s.questionRepo.FindCorrectOptionAndExplanation(ctx, question.ID)
		if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("questionID", question.ID).Msg("SubmitAnswer: Failed to load answer key")
			return nil, apperror.Repository(op, err)
		}
		if key == nil {
			log.Warn().Str("questionID", question.ID).Msg("SubmitAnswer: Question has no answer key, grading as incorrect")
		}
		correct := IsOptionCorrect(*req.SelectedOptionID, key)
		answer.SelectedOptionID = req.SelectedOptionID
		answer.IsCorrect = &correct
	case model.QuestionTypeOpen:
		if req.TextAnswer == nil || strings.TrimSpace(*req.TextAnswer) == "" {
			return nil, apperror.New(apperror.KindInvalidAnswerType, op, "open questions require a non-empty text_answer")
		}
		answer.TextAnswer = req.TextAnswer
	default:
		return nil, apperror.Newf(apperror.KindInvalidAnswerType, op, "unsupported question type %s", question.Type)
	}

	var stored *model.AttemptAnswer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Touching the attempt under its status guard serializes with a concurrent submit.
		active, err := s.attemptRepo.WithTx(tx).TransitionStatus(ctx, attempt.ID, model.AttemptStatusInProgress, map[string]interface{}{
			"updated_at": s.now(),
		})
		if err != nil {
			return err
		}
		if !active {
			return apperror.New(apperror.KindAttemptNotActive, op, "attempt was submitted")
		}
		stored, err = s.answerRepo.WithTx(tx).Upsert(ctx, answer)
		return err
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindRepository {
			log.Error().Err(err).Str("attemptID", attempt.ID).Str("questionID", question.ID).Msg("SubmitAnswer: Failed to save answer")
		}
		return nil, txError(op, err)
	}

	log.Debug().Str("attemptID", attempt.ID).Str("questionID", question.ID).Str("answerID", stored.ID).Msg("SubmitAnswer: Answer saved")
	resp := toAnswerResponse(stored)
	// Correctness stays hidden until the attempt is submitted.
	resp.IsCorrect = nil
	return &resp, nil
}
