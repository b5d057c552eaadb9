package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/model"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ReviewService applies tutor decisions to OPEN answers and exposes the review queue.
type ReviewService interface {
	ReviewOpenAnswer(ctx context.Context, req dto.ReviewAnswerRequest) (*dto.ReviewAnswerResponse, error)
	ListPendingReviews(ctx context.Context, req dto.ListPendingReviewsRequest) (*dto.PendingReviewListResponse, error)
}

// reviewGuard loads an answer together with its attempt and question and checks that the
// reviewer may decide on it now.
type reviewGuard struct {
	accountRepo  repository.AccountRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	answerRepo   repository.AttemptAnswerRepository
}

type reviewTarget struct {
	answer   *model.AttemptAnswer
	attempt  *model.Attempt
	question *model.Question
	reviewer *model.Account
}

func (g reviewGuard) load(ctx context.Context, op, answerID, reviewerID string) (*reviewTarget, error) {
	answer, err := g.answerRepo.FindByID(ctx, answerID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("answerID", answerID).Msg(op + ": Failed to load answer")
		}
		return nil, lookupError(op, apperror.KindAttemptAnswerNotFound, "answer", err)
	}
	reviewer, err := g.requireReviewer(ctx, op, reviewerID)
	if err != nil {
		return nil, err
	}

	attempt, err := g.attemptRepo.FindByID(ctx, answer.AttemptID)
	if err != nil {
		log.Error().Err(err).Str("answerID", answer.ID).Str("attemptID", answer.AttemptID).Msg(op + ": Failed to load attempt")
		return nil, lookupError(op, apperror.KindAttemptNotFound, "attempt", err)
	}
	if attempt.Status != model.AttemptStatusSubmitted {
		return nil, apperror.Newf(apperror.KindAnswerNotReviewable, op, "attempt is %s", attempt.Status)
	}
	question, err := g.questionRepo.FindByID(ctx, answer.QuestionID)
	if err != nil {
		log.Error().Err(err).Str("answerID", answer.ID).Str("questionID", answer.QuestionID).Msg(op + ": Failed to load question")
		return nil, lookupError(op, apperror.KindQuestionNotFound, "question", err)
	}
	if question.Type != model.QuestionTypeOpen {
		return nil, apperror.New(apperror.KindAnswerNotReviewable, op, "only answers to open questions are reviewed")
	}
	if answer.TextAnswer == nil || strings.TrimSpace(*answer.TextAnswer) == "" {
		return nil, apperror.New(apperror.KindAnswerNotReviewable, op, "answer has no text to review")
	}
	if answer.ReviewerID != nil {
		return nil, apperror.New(apperror.KindAnswerNotReviewable, op, "answer has already been reviewed")
	}
	return &reviewTarget{answer: answer, attempt: attempt, question: question, reviewer: reviewer}, nil
}

func (g reviewGuard) requireReviewer(ctx context.Context, op, reviewerID string) (*model.Account, error) {
	reviewer, err := g.accountRepo.FindByID(ctx, reviewerID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Error().Err(err).Str("reviewerID", reviewerID).Msg(op + ": Failed to load reviewer")
		}
		return nil, lookupError(op, apperror.KindUserNotFound, "user", err)
	}
	if !reviewer.CanReview() {
		return nil, apperror.New(apperror.KindInsufficientPermissions, op, "tutor or admin role required")
	}
	return reviewer, nil
}

type reviewService struct {
	reviewGuard
	db             *gorm.DB
	assessmentRepo repository.AssessmentRepository
	now            func() time.Time
}

func NewReviewService(
	db *gorm.DB,
	accountRepo repository.AccountRepository,
	assessmentRepo repository.AssessmentRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AttemptAnswerRepository,
) ReviewService {
	return &reviewService{
		reviewGuard: reviewGuard{
			accountRepo:  accountRepo,
			questionRepo: questionRepo,
			attemptRepo:  attemptRepo,
			answerRepo:   answerRepo,
		},
		db:             db,
		assessmentRepo: assessmentRepo,
		now:            clock,
	}
}

// ReviewOpenAnswer records a write-once decision on an OPEN answer. The review that
// leaves no OPEN answer undecided also grades the attempt.
func (s *reviewService) ReviewOpenAnswer(ctx context.Context, req dto.ReviewAnswerRequest) (*dto.ReviewAnswerResponse, error) {
	const op = "ReviewOpenAnswer"
	if err := validateRequest(op, req); err != nil {
		return nil, err
	}

	target, err := s.load(ctx, op, req.AttemptAnswerID, req.ReviewerID)
	if err != nil {
		return nil, err
	}
	attemptID := target.attempt.ID

	assessment, err := s.assessmentRepo.FindByID(ctx, target.attempt.AssessmentID)
	if err != nil {
		log.Error().Err(err).Str("attemptID", attemptID).Msg("ReviewOpenAnswer: Failed to load assessment")
		return nil, lookupError(op, apperror.KindAssessmentNotFound, "assessment", err)
	}

	now := s.now()
	var allReviewed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attemptRepo := s.attemptRepo.WithTx(tx)
		answerRepo := s.answerRepo.WithTx(tx)

		// Reviews of the same attempt queue up behind this row update, so the last one
		// always sees every other decision.
		open, err := attemptRepo.TransitionStatus(ctx, attemptID, model.AttemptStatusSubmitted, map[string]interface{}{
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if !open {
			return apperror.New(apperror.KindAnswerNotReviewable, op, "attempt is no longer awaiting review")
		}

		recorded, err := answerRepo.MarkReviewed(ctx, target.answer.ID, target.reviewer.ID, *req.IsCorrect, req.TeacherComment, now)
		if err != nil {
			return err
		}
		if !recorded {
			return apperror.New(apperror.KindAnswerNotReviewable, op, "answer has already been reviewed")
		}

		remaining, err := answerRepo.CountUnreviewedOpen(ctx, attemptID)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		allReviewed = true

		answers, err := answerRepo.FindByAttempt(ctx, attemptID)
		if err != nil {
			return err
		}
		result := Score(answers, len(assessment.Questions), assessment.PassingScore)
		if !result.Determined() {
			return nil
		}
		graded, err := attemptRepo.TransitionStatus(ctx, attemptID, model.AttemptStatusSubmitted, map[string]interface{}{
			"status":     model.AttemptStatusGraded,
			"score":      result.ScorePercentage,
			"graded_at":  now,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if !graded {
			return apperror.New(apperror.KindAnswerNotReviewable, op, "attempt changed during review")
		}
		log.Info().Str("attemptID", attemptID).Int("score", result.ScorePercentage).Msg("ReviewOpenAnswer: Attempt graded after final review")
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindRepository {
			log.Error().Err(err).Str("answerID", target.answer.ID).Str("attemptID", attemptID).Msg("ReviewOpenAnswer: Transaction failed")
		}
		return nil, txError(op, err)
	}

	answer, err := s.answerRepo.FindByID(ctx, target.answer.ID)
	if err != nil {
		log.Error().Err(err).Str("answerID", target.answer.ID).Msg("ReviewOpenAnswer: Failed to reload answer")
		return nil, apperror.Repository(op, err)
	}
	attempt, err := s.attemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		log.Error().Err(err).Str("attemptID", attemptID).Msg("ReviewOpenAnswer: Failed to reload attempt")
		return nil, apperror.Repository(op, err)
	}

	log.Info().Str("answerID", answer.ID).Str("reviewerID", target.reviewer.ID).Bool("allReviewed", allReviewed).Msg("ReviewOpenAnswer: Review recorded")
	return &dto.ReviewAnswerResponse{
		Answer:                   toAnswerResponse(answer),
		AttemptID:                attempt.ID,
		AttemptStatus:            attempt.Status,
		AllOpenQuestionsReviewed: allReviewed,
	}, nil
}

// ListPendingReviews returns submitted PROVA_ABERTA attempts, oldest submission first.
func (s *reviewService) ListPendingReviews(ctx context.Context, req dto.ListPendingReviewsRequest) (*dto.PendingReviewListResponse, error) {
	const op = "ListPendingReviews"
	if err := validateRequest(op, req); err != nil {
		return nil, err
	}
	if _, err := s.requireReviewer(ctx, op, req.ReviewerID); err != nil {
		return nil, err
	}

	page := repository.NewPage(req.Page, req.PageSize)
	rows, total, err := s.attemptRepo.ListPendingReview(ctx, page)
	if err != nil {
		log.Error().Err(err).Str("reviewerID", req.ReviewerID).Msg("ListPendingReviews: Failed to list pending reviews")
		return nil, apperror.Repository(op, err)
	}

	items := make([]dto.PendingReviewItem, len(rows))
	for i := range rows {
		if err := copier.Copy(&items[i], &rows[i]); err != nil {
			log.Error().Err(err).Str("attemptID", rows[i].AttemptID).Msg("ListPendingReviews: Failed to copy row to DTO")
			return nil, apperror.Repository(op, err)
		}
	}

	pageNumber := req.Page
	if pageNumber < 1 {
		pageNumber = 1
	}
	return &dto.PendingReviewListResponse{Items: items, Total: total, Page: pageNumber, PageSize: page.Limit}, nil
}
