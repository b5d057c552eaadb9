package service

import (
	"math"

	"github.com/lshigami/examhub/internal/model"
)

// ScoreResult is the outcome of scoring a set of answers against an assessment.
// Passed is nil while any answer awaits manual review.
type ScoreResult struct {
	CorrectAnswers  int
	TotalQuestions  int
	PendingReview   int
	ScorePercentage int
	Passed          *bool
}

// Determined reports whether every answer has a known correctness.
func (r ScoreResult) Determined() bool {
	return r.PendingReview == 0
}

// ArgumentScore is a ScoreResult restricted to the questions of one argument.
type ArgumentScore struct {
	ArgumentID *string
	Title      string
	ScoreResult
}

// UnassignedArgumentTitle labels the bucket of questions that belong to no argument.
const UnassignedArgumentTitle = "Unassigned"

// Percentage rounds correct/total to a whole percentage. An empty assessment scores 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Score computes the overall score. The denominator is always totalQuestions, so
// unanswered questions count as incorrect.
func Score(answers []model.AttemptAnswer, totalQuestions, passingScore int) ScoreResult {
	result := ScoreResult{TotalQuestions: totalQuestions}
	for _, a := range answers {
		switch {
		case a.IsCorrect == nil:
			result.PendingReview++
		case *a.IsCorrect:
			result.CorrectAnswers++
		}
	}
	result.ScorePercentage = Percentage(result.CorrectAnswers, totalQuestions)
	if result.Determined() {
		passed := result.ScorePercentage >= passingScore
		result.Passed = &passed
	}
	return result
}

// ScoreByArgument groups questions by argument in argument order. Questions without an
// argument, or pointing at an unknown one, land in a trailing unassigned bucket which is
// only emitted when non-empty. The per-argument totals and correct counts always add up
// to the overall ones.
func ScoreByArgument(questions []model.Question, arguments []model.Argument, answers []model.AttemptAnswer, passingScore int) []ArgumentScore {
	byQuestion := make(map[string]model.AttemptAnswer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	index := make(map[string]int, len(arguments))
	buckets := make([]ArgumentScore, len(arguments), len(arguments)+1)
	grouped := make([][]model.AttemptAnswer, len(arguments)+1)
	for i, arg := range arguments {
		id := arg.ID
		index[id] = i
		buckets[i] = ArgumentScore{ArgumentID: &id, Title: arg.Title}
	}
	unassigned := len(arguments)
	totals := make([]int, len(arguments)+1)

	for _, q := range questions {
		slot := unassigned
		if q.ArgumentID != nil {
			if i, ok := index[*q.ArgumentID]; ok {
				slot = i
			}
		}
		totals[slot]++
		if a, ok := byQuestion[q.ID]; ok {
			grouped[slot] = append(grouped[slot], a)
		}
	}

	for i := range buckets {
		buckets[i].ScoreResult = Score(grouped[i], totals[i], passingScore)
	}
	if totals[unassigned] > 0 {
		buckets = append(buckets, ArgumentScore{
			Title:       UnassignedArgumentTitle,
			ScoreResult: Score(grouped[unassigned], totals[unassigned], passingScore),
		})
	}
	return buckets
}

// IsOptionCorrect decides MULTIPLE_CHOICE correctness against the answer key.
func IsOptionCorrect(selectedOptionID string, key *model.AnswerKey) bool {
	return key != nil && key.CorrectOptionID != nil && *key.CorrectOptionID == selectedOptionID
}
