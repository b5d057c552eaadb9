package service

import (
	"context"
	"errors"
	"time"

	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/model"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService owns the attempt lifecycle: start, answer, submit and listing.
type AttemptService interface {
	StartAttempt(ctx context.Context, req dto.StartAttemptRequest) (*dto.StartAttemptResponse, error)
	SubmitAnswer(ctx context.Context, req dto.SubmitAnswerRequest) (*dto.AnswerResponse, error)
	SubmitAttempt(ctx context.Context, req dto.SubmitAttemptRequest) (*dto.SubmitAttemptResponse, error)
	ListAttempts(ctx context.Context, req dto.ListAttemptsRequest) (*dto.AttemptListResponse, error)
}

type attemptService struct {
	db             *gorm.DB // Used for transactions within service methods
	accountRepo    repository.AccountRepository
	assessmentRepo repository.AssessmentRepository
	questionRepo   repository.QuestionRepository
	attemptRepo    repository.AttemptRepository
	answerRepo     repository.AttemptAnswerRepository
	now            func() time.Time
}

func NewAttemptService(
	db *gorm.DB,
	accountRepo repository.AccountRepository,
	assessmentRepo repository.AssessmentRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AttemptAnswerRepository,
) AttemptService {
	return &attemptService{
		db:             db,
		accountRepo:    accountRepo,
		assessmentRepo: assessmentRepo,
		questionRepo:   questionRepo,
		attemptRepo:    attemptRepo,
		answerRepo:     answerRepo,
		now:            clock,
	}
}

// clock is the production time source. Stored times are truncated to the precision Postgres keeps.
func clock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// txError keeps business outcomes raised inside a transaction and wraps everything else.
func txError(op string, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Repository(op, err)
}

// StartAttempt returns the user's IN_PROGRESS attempt for the assessment, creating it if needed.
func (s *attemptService) StartAttempt(ctx context.Context, req dto.StartAttemptRequest) (*dto.StartAttemptResponse, error) {
	const op = "StartAttempt"
	if err := validateRequest(op, req); err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.FindByID(ctx, req.UserID); err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("userID", req.UserID).Msg("StartAttempt: Failed to load user")
		}
		return nil, lookupError(op, apperror.KindUserNotFound, "user", err)
	}
	assessment, err := s.assessmentRepo.FindByID(ctx, req.AssessmentID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("assessmentID", req.AssessmentID).Msg("StartAttempt: Failed to load assessment")
		}
		return nil, lookupError(op, apperror.KindAssessmentNotFound, "assessment", err)
	}

	existing, err := s.attemptRepo.FindActive(ctx, req.UserID, req.AssessmentID)
	if err == nil {
		log.Info().Str("attemptID", existing.ID).Str("userID", req.UserID).Msg("StartAttempt: Returning existing in-progress attempt")
		return &dto.StartAttemptResponse{Attempt: toAttemptResponse(existing), IsNew: false}, nil
	}
	if !errors.Is(err, repository.ErrRecordNotFound) {
		log.Error().Err(err).Str("userID", req.UserID).Str("assessmentID", req.AssessmentID).Msg("StartAttempt: Failed to look up active attempt")
		return nil, apperror.Repository(op, err)
	}

	now := s.now()
	attempt := &model.Attempt{
		UserID:       req.UserID,
		AssessmentID: req.AssessmentID,
		Status:       model.AttemptStatusInProgress,
		StartedAt:    now,
	}
	if limit := assessment.EffectiveTimeLimit(); limit != nil {
		expiresAt := now.Add(*limit)
		attempt.TimeLimitExpiresAt = &expiresAt
	}

	err = s.attemptRepo.Create(ctx, attempt)
	if errors.Is(err, repository.ErrActiveAttemptExists) {
		// A concurrent start won the unique index; hand back its attempt.
		winner, findErr := s.attemptRepo.FindActive(ctx, req.UserID, req.AssessmentID)
		if findErr != nil {
			log.Error().Err(findErr).Str("userID", req.UserID).Str("assessmentID", req.AssessmentID).Msg("StartAttempt: Failed to reload concurrently created attempt")
			return nil, apperror.Repository(op, findErr)
		}
		return &dto.StartAttemptResponse{Attempt: toAttemptResponse(winner), IsNew: false}, nil
	}
	if err != nil {
		log.Error().Err(err).Str("userID", req.UserID).Str("assessmentID", req.AssessmentID).Msg("StartAttempt: Failed to create attempt")
		return nil, apperror.Repository(op, err)
	}

	log.Info().Str("attemptID", attempt.ID).Str("userID", req.UserID).Str("assessmentType", string(assessment.Type)).Msg("StartAttempt: Attempt started")
	return &dto.StartAttemptResponse{Attempt: toAttemptResponse(attempt), IsNew: true}, nil
}

// SubmitAttempt closes an IN_PROGRESS attempt. It is graded at once when every answer has a
// known correctness and parked as SUBMITTED for review otherwise.
func (s *attemptService) SubmitAttempt(ctx context.Context, req dto.SubmitAttemptRequest) (*dto.SubmitAttemptResponse, error) {
	const op = "SubmitAttempt"
	if err := validateRequest(op, req); err != nil {
		return nil, err
	}

	attempt, err := s.attemptRepo.FindByID(ctx, req.AttemptID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("attemptID", req.AttemptID).Msg("SubmitAttempt: Failed to load attempt")
		}
		return nil, lookupError(op, apperror.KindAttemptNotFound, "attempt", err)
	}
	if attempt.UserID != req.UserID {
		return nil, apperror.New(apperror.KindInsufficientPermissions, op, "only the owner can submit this attempt")
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, apperror.Newf(apperror.KindAttemptNotActive, op, "attempt is %s", attempt.Status)
	}
	now := s.now()
	if attempt.Expired(now) {
		return nil, apperror.New(apperror.KindAttemptExpired, op, "the time limit of this attempt has passed")
	}

	assessment, err := s.assessmentRepo.FindByID(ctx, attempt.AssessmentID)
	if err != nil {
		log.Error().Err(err).Str("attemptID", attempt.ID).Str("assessmentID", attempt.AssessmentID).Msg("SubmitAttempt: Failed to load assessment")
		return nil, lookupError(op, apperror.KindAssessmentNotFound, "assessment", err)
	}

	var (
		answers []model.AttemptAnswer
		result  ScoreResult
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attemptRepo := s.attemptRepo.WithTx(tx)
		answerRepo := s.answerRepo.WithTx(tx)

		moved, err := attemptRepo.TransitionStatus(ctx, attempt.ID, model.AttemptStatusInProgress, map[string]interface{}{
			"status":       model.AttemptStatusSubmitted,
			"submitted_at": now,
			"updated_at":   now,
		})
		if err != nil {
			return err
		}
		if !moved {
			return apperror.New(apperror.KindAttemptNotActive, op, "attempt was already submitted")
		}

		answers, err = answerRepo.FindByAttempt(ctx, attempt.ID)
		if err != nil {
			return err
		}
		if len(answers) == 0 {
			return apperror.New(apperror.KindNoAnswersFound, op, "cannot submit an attempt without answers")
		}
		if err := answerRepo.SettleStatuses(ctx, attempt.ID); err != nil {
			return err
		}

		result = Score(answers, len(assessment.Questions), assessment.PassingScore)
		if !result.Determined() {
			return nil
		}
		graded, err := attemptRepo.TransitionStatus(ctx, attempt.ID, model.AttemptStatusSubmitted, map[string]interface{}{
			"status":     model.AttemptStatusGraded,
			"score":      result.ScorePercentage,
			"graded_at":  now,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if !graded {
			return apperror.New(apperror.KindAttemptNotActive, op, "attempt changed during submission")
		}
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindRepository {
			log.Error().Err(err).Str("attemptID", attempt.ID).Msg("SubmitAttempt: Transaction failed")
		}
		return nil, txError(op, err)
	}

	stored, err := s.attemptRepo.FindByID(ctx, attempt.ID)
	if err != nil {
		log.Error().Err(err).Str("attemptID", attempt.ID).Msg("SubmitAttempt: Failed to reload attempt")
		return nil, apperror.Repository(op, err)
	}

	summary := dto.SubmissionSummary{
		TotalQuestions:    result.TotalQuestions,
		AnsweredQuestions: len(answers),
	}
	if result.Determined() {
		summary.CorrectAnswers = intPtr(result.CorrectAnswers)
		summary.ScorePercentage = intPtr(result.ScorePercentage)
		summary.Passed = result.Passed
	}

	log.Info().Str("attemptID", stored.ID).Str("status", string(stored.Status)).Int("answered", len(answers)).Msg("SubmitAttempt: Attempt submitted")
	return &dto.SubmitAttemptResponse{Attempt: toAttemptResponse(stored), Summary: summary}, nil
}

// ListAttempts pages through attempts. Students only ever see their own.
func (s *attemptService) ListAttempts(ctx context.Context, req dto.ListAttemptsRequest) (*dto.AttemptListResponse, error) {
	const op = "ListAttempts"
	if err := validateRequest(op, req); err != nil {
		return nil, err
	}

	requester, err := s.accountRepo.FindByID(ctx, req.RequesterID)
	if err != nil {
		return nil, lookupError(op, apperror.KindUserNotFound, "user", err)
	}

	filters := repository.AttemptFilters{
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      repository.NewPage(req.Page, req.PageSize),
	}
	if filters.SortBy == "" {
		filters.SortBy = "startedAt"
	}
	if filters.SortOrder == "" {
		filters.SortOrder = "desc"
	}
	if req.Status != "" {
		status := model.AttemptStatus(req.Status)
		filters.Status = &status
	}
	if req.AssessmentID != "" {
		filters.AssessmentID = &req.AssessmentID
	}
	switch {
	case !requester.CanReview():
		if req.UserID != "" && req.UserID != requester.ID {
			return nil, apperror.New(apperror.KindInsufficientPermissions, op, "students can only list their own attempts")
		}
		filters.UserID = &requester.ID
	case req.UserID != "":
		filters.UserID = &req.UserID
	}

	attempts, total, err := s.attemptRepo.List(ctx, filters)
	if err != nil {
		log.Error().Err(err).Str("requesterID", requester.ID).Msg("ListAttempts: Failed to list attempts")
		return nil, apperror.Repository(op, err)
	}

	items := make([]dto.AttemptListItem, 0, len(attempts))
	for i := range attempts {
		item := dto.AttemptListItem{AttemptResponse: toAttemptResponse(&attempts[i])}
		if attempts[i].Assessment != nil {
			item.AssessmentTitle = attempts[i].Assessment.Title
			item.AssessmentType = attempts[i].Assessment.Type
		}
		items = append(items, item)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	return &dto.AttemptListResponse{Items: items, Total: total, Page: page, PageSize: filters.Page.Limit}, nil
}
