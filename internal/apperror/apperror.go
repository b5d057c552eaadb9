// Package apperror defines the closed set of business outcomes returned by the
// attempt, review and results services.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. The set is closed: KindCount must stay last.
type Kind int

const (
	KindInvalidInput Kind = iota
	KindUserNotFound
	KindAssessmentNotFound
	KindQuestionNotFound
	KindAttemptNotFound
	KindAttemptAnswerNotFound
	KindAttemptNotActive
	KindAttemptExpired
	KindAttemptNotFinalized
	KindNoAnswersFound
	KindInvalidAnswerType
	KindAnswerNotReviewable
	KindInsufficientPermissions
	KindRepository

	KindCount
)

var kindCodes = [...]string{
	KindInvalidInput:            "INVALID_INPUT",
	KindUserNotFound:            "USER_NOT_FOUND",
	KindAssessmentNotFound:      "ASSESSMENT_NOT_FOUND",
	KindQuestionNotFound:        "QUESTION_NOT_FOUND",
	KindAttemptNotFound:         "ATTEMPT_NOT_FOUND",
	KindAttemptAnswerNotFound:   "ATTEMPT_ANSWER_NOT_FOUND",
	KindAttemptNotActive:        "ATTEMPT_NOT_ACTIVE",
	KindAttemptExpired:          "ATTEMPT_EXPIRED",
	KindAttemptNotFinalized:     "ATTEMPT_NOT_FINALIZED",
	KindNoAnswersFound:          "NO_ANSWERS_FOUND",
	KindInvalidAnswerType:       "INVALID_ANSWER_TYPE",
	KindAnswerNotReviewable:     "ANSWER_NOT_REVIEWABLE",
	KindInsufficientPermissions: "INSUFFICIENT_PERMISSIONS",
	KindRepository:              "REPOSITORY_ERROR",
}

// Compile-time guard: adding a Kind without a code breaks the build.
var _ [0]struct{} = [len(kindCodes) - int(KindCount)]struct{}{}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindCodes[k]
}

// Error is a tagged business outcome.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "SubmitAttempt"
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so the exported sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Repository wraps a storage failure.
func Repository(op string, err error) *Error {
	return &Error{Kind: KindRepository, Op: op, Message: "repository failure", Err: err}
}

// KindOf extracts the Kind of err. Errors that are not *Error are infrastructure faults.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRepository
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput            = &Error{Kind: KindInvalidInput}
	ErrUserNotFound            = &Error{Kind: KindUserNotFound}
	ErrAssessmentNotFound      = &Error{Kind: KindAssessmentNotFound}
	ErrQuestionNotFound        = &Error{Kind: KindQuestionNotFound}
	ErrAttemptNotFound         = &Error{Kind: KindAttemptNotFound}
	ErrAttemptAnswerNotFound   = &Error{Kind: KindAttemptAnswerNotFound}
	ErrAttemptNotActive        = &Error{Kind: KindAttemptNotActive}
	ErrAttemptExpired          = &Error{Kind: KindAttemptExpired}
	ErrAttemptNotFinalized     = &Error{Kind: KindAttemptNotFinalized}
	ErrNoAnswersFound          = &Error{Kind: KindNoAnswersFound}
	ErrInvalidAnswerType       = &Error{Kind: KindInvalidAnswerType}
	ErrAnswerNotReviewable     = &Error{Kind: KindAnswerNotReviewable}
	ErrInsufficientPermissions = &Error{Kind: KindInsufficientPermissions}
	ErrRepository              = &Error{Kind: KindRepository}
)
