package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lshigami/examhub/internal/apperror"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/rs/zerolog/log"
)

// maxCommentLength mirrors the limit on teacher comments so a suggestion can be submitted as is.
const maxCommentLength = 1000

// ReviewAssistantService drafts a verdict for an OPEN answer. Drafts are never stored.
type ReviewAssistantService interface {
	SuggestReview(ctx context.Context, req dto.ReviewSuggestionRequest) (*dto.ReviewSuggestionResponse, error)
}

type reviewAssistantService struct {
	reviewGuard
	llm LLMClient
}

func NewReviewAssistantService(
	llm LLMClient,
	accountRepo repository.AccountRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AttemptAnswerRepository,
) ReviewAssistantService {
	return &reviewAssistantService{
		reviewGuard: reviewGuard{
			accountRepo:  accountRepo,
			questionRepo: questionRepo,
			attemptRepo:  attemptRepo,
			answerRepo:   answerRepo,
		},
		llm: llm,
	}
}

func (s *reviewAssistantService) SuggestReview(ctx context.Context, req dto.ReviewSuggestionRequest) (*dto.ReviewSuggestionResponse, error) {
	const op = "SuggestReview"
	if err := validateRequest(op, req); err != nil {
		return nil, err
	}
	target, err := s.load(ctx, op, req.AttemptAnswerID, req.ReviewerID)
	if err != nil {
		return nil, err
	}

	rubric := ""
	key, err := s.questionRepo.FindCorrectOptionAndExplanation(ctx, target.question.ID)
	switch {
	case err == nil:
		rubric = key.Explanation
	case !errors.Is(err, repository.ErrRecordNotFound):
		log.Error().Err(err).Str("questionID", target.question.ID).Msg("SuggestReview: Failed to load rubric")
		return nil, apperror.Repository(op, err)
	}

	raw, err := s.llm.Generate(ctx, buildReviewPrompt(target.question.Text, rubric, *target.answer.TextAnswer))
	if err != nil {
		if !errors.Is(err, ErrLLMUnavailable) {
			log.Error().Err(err).Str("answerID", target.answer.ID).Msg("SuggestReview: Language model call failed")
		}
		return nil, err
	}

	verdict, comment := parseVerdictAndComment(raw)
	if verdict == nil {
		log.Warn().Str("answerID", target.answer.ID).Msg("SuggestReview: Model response had no verdict line")
	}
	return &dto.ReviewSuggestionResponse{
		AttemptAnswerID:    target.answer.ID,
		SuggestedIsCorrect: verdict,
		SuggestedComment:   comment,
	}, nil
}

func buildReviewPrompt(questionText, rubric, answerText string) string {
	var b strings.Builder
	b.WriteString("You are an experienced tutor grading a student's written answer.\n")
	b.WriteString("Decide whether the answer is acceptable as correct and write a short comment addressed to the student.\n\n")
	b.WriteString("Question:\n---\n")
	b.WriteString(questionText)
	b.WriteString("\n---\n\n")
	if rubric != "" {
		b.WriteString("Expected answer or rubric:\n---\n")
		b.WriteString(rubric)
		b.WriteString("\n---\n\n")
	}
	b.WriteString("Student's answer:\n---\n")
	b.WriteString(answerText)
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "Format your response strictly as:\nVerdict: CORRECT or INCORRECT\nComment: [at most %d characters]\n", maxCommentLength)
	return b.String()
}

// parseVerdictAndComment reads the "Verdict:" and "Comment:" lines of a model response.
// Without a comment line the rest of the response after the verdict is used.
func parseVerdictAndComment(raw string) (*bool, string) {
	const (
		verdictPrefix = "verdict:"
		commentPrefix = "comment:"
	)
	var (
		verdict *bool
		comment string
	)

	verdictAt := indexFold(raw, verdictPrefix)
	if verdictAt >= 0 {
		line := raw[verdictAt+len(verdictPrefix):]
		if end := strings.IndexByte(line, '\n'); end >= 0 {
			line = line[:end]
		}
		value := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(value, "INCORRECT"):
			v := false
			verdict = &v
		case strings.HasPrefix(value, "CORRECT"):
			v := true
			verdict = &v
		}
	}

	switch commentAt := indexFold(raw, commentPrefix); {
	case commentAt >= 0:
		comment = strings.TrimSpace(raw[commentAt+len(commentPrefix):])
	case verdictAt >= 0:
		rest := raw[verdictAt:]
		if end := strings.IndexByte(rest, '\n'); end >= 0 {
			comment = strings.TrimSpace(rest[end+1:])
		}
	default:
		comment = strings.TrimSpace(raw)
	}
	return verdict, truncateRunes(comment, maxCommentLength)
}

// indexFold is strings.Index ignoring ASCII case.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
