package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/jinzhu/copier"
	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/model"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/rs/zerolog/log"
)

// ResultService builds the read-side view of a submitted attempt.
type ResultService interface {
	GetAttemptResults(ctx context.Context, req dto.AttemptResultsRequest) (*dto.AttemptResultsResponse, error)
}

type resultService struct {
	accountRepo    repository.AccountRepository
	assessmentRepo repository.AssessmentRepository
	attemptRepo    repository.AttemptRepository
	answerRepo     repository.AttemptAnswerRepository
}

func NewResultService(
	accountRepo repository.AccountRepository,
	assessmentRepo repository.AssessmentRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AttemptAnswerRepository,
) ResultService {
	return &resultService{
		accountRepo:    accountRepo,
		assessmentRepo: assessmentRepo,
		attemptRepo:    attemptRepo,
		answerRepo:     answerRepo,
	}
}

func (s *resultService) GetAttemptResults(ctx context.Context, req dto.AttemptResultsRequest) (*dto.AttemptResultsResponse, error) {
	const op = "GetAttemptResults"
	if err := validateRequest(op, req); err != nil {
		return nil, err
	}

	attempt, err := s.attemptRepo.FindByID(ctx, req.AttemptID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("attemptID", req.AttemptID).Msg("GetAttemptResults: Failed to load attempt")
		}
		return nil, lookupError(op, apperror.KindAttemptNotFound, "attempt", err)
	}
	if attempt.Status == model.AttemptStatusInProgress {
		return nil, apperror.New(apperror.KindAttemptNotFinalized, op, "attempt has not been submitted yet")
	}

	requester, err := s.accountRepo.FindByID(ctx, req.RequesterID)
	if err != nil {
		return nil, lookupError(op, apperror.KindUserNotFound, "user", err)
	}
	if requester.ID != attempt.UserID && !requester.CanReview() {
		return nil, apperror.New(apperror.KindInsufficientPermissions, op, "only the owner or a tutor can view these results")
	}

	assessment, err := s.assessmentRepo.FindByID(ctx, attempt.AssessmentID)
	if err != nil {
		log.Error().Err(err).Str("attemptID", attempt.ID).Str("assessmentID", attempt.AssessmentID).Msg("GetAttemptResults: Failed to load assessment")
		return nil, lookupError(op, apperror.KindAssessmentNotFound, "assessment", err)
	}
	answers, err := s.answerRepo.FindByAttempt(ctx, attempt.ID)
	if err != nil {
		log.Error().Err(err).Str("attemptID", attempt.ID).Msg("GetAttemptResults: Failed to load answers")
		return nil, apperror.Repository(op, err)
	}

	resp := &dto.AttemptResultsResponse{
		Attempt: toAttemptResponse(attempt),
		Results: buildResultsBlock(attempt, assessment, answers),
		Answers: buildAnswerDetails(attempt, assessment, answers),
	}
	if err := copier.Copy(&resp.Assessment, assessment); err != nil {
		log.Error().Err(err).Str("assessmentID", assessment.ID).Msg("GetAttemptResults: Failed to copy assessment summary")
		return nil, apperror.Repository(op, err)
	}
	if assessment.Type == model.AssessmentTypeSimulado && len(assessment.Arguments) > 0 {
		for _, bucket := range ScoreByArgument(assessment.Questions, assessment.Arguments, answers, assessment.PassingScore) {
			resp.ArgumentResults = append(resp.ArgumentResults, dto.ArgumentResult{
				ArgumentID:      bucket.ArgumentID,
				Title:           bucket.Title,
				TotalQuestions:  bucket.TotalQuestions,
				CorrectAnswers:  bucket.CorrectAnswers,
				PendingReview:   bucket.PendingReview,
				ScorePercentage: bucket.ScorePercentage,
			})
		}
	}
	return resp, nil
}

func buildResultsBlock(attempt *model.Attempt, assessment *model.Assessment, answers []model.AttemptAnswer) dto.ResultsBlock {
	result := Score(answers, len(assessment.Questions), assessment.PassingScore)
	block := dto.ResultsBlock{
		TotalQuestions:    result.TotalQuestions,
		AnsweredQuestions: len(answers),
	}
	if attempt.SubmittedAt != nil {
		block.TimeSpent = intPtr(int(math.Round(attempt.SubmittedAt.Sub(attempt.StartedAt).Minutes())))
	}

	if result.Determined() {
		score := result.ScorePercentage
		if attempt.Score != nil {
			score = *attempt.Score
		}
		passed := score >= assessment.PassingScore
		block.CorrectAnswers = intPtr(result.CorrectAnswers)
		block.ScorePercentage = intPtr(score)
		block.Passed = &passed
		return block
	}

	questionTypes := make(map[string]model.QuestionType, len(assessment.Questions))
	for _, q := range assessment.Questions {
		questionTypes[q.ID] = q.Type
	}
	reviewed := 0
	for _, a := range answers {
		if questionTypes[a.QuestionID] == model.QuestionTypeOpen && a.IsCorrect != nil {
			reviewed++
		}
	}
	block.ReviewedQuestions = intPtr(reviewed)
	block.PendingReview = intPtr(result.PendingReview)
	return block
}

func buildAnswerDetails(attempt *model.Attempt, assessment *model.Assessment, answers []model.AttemptAnswer) []dto.AnswerDetail {
	questions := make(map[string]*model.Question, len(assessment.Questions))
	for i := range assessment.Questions {
		questions[assessment.Questions[i].ID] = &assessment.Questions[i]
	}

	details := make([]dto.AnswerDetail, 0, len(answers))
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			log.Warn().Str("attemptID", attempt.ID).Str("questionID", a.QuestionID).Msg("GetAttemptResults: Answer refers to a question outside the assessment")
			continue
		}
		d := dto.AnswerDetail{
			AnswerID:     a.ID,
			QuestionID:   q.ID,
			QuestionText: q.Text,
			QuestionType: q.Type,
			Position:     q.Position,
			Status:       a.Status,
			IsCorrect:    a.IsCorrect,
		}
		switch q.Type {
		case model.QuestionTypeMultipleChoice:
			d.SelectedOptionID = a.SelectedOptionID
			if a.SelectedOptionID != nil {
				if opt, ok := q.Option(*a.SelectedOptionID); ok {
					d.SelectedOptionText = &opt.Text
				}
			}
			if q.AnswerKey != nil {
				d.CorrectOptionID = q.AnswerKey.CorrectOptionID
				if q.AnswerKey.CorrectOptionID != nil {
					if opt, ok := q.Option(*q.AnswerKey.CorrectOptionID); ok {
						d.CorrectOptionText = &opt.Text
					}
				}
				if q.AnswerKey.Explanation != "" {
					explanation := q.AnswerKey.Explanation
					d.Explanation = &explanation
				}
			}
		case model.QuestionTypeOpen:
			d.TextAnswer = a.TextAnswer
			d.TeacherComment = a.TeacherComment
			d.SubmittedAt = attempt.SubmittedAt
			d.ReviewedAt = a.ReviewedAt
		}
		details = append(details, d)
	}
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Position < details[j].Position
	})
	return details
}
