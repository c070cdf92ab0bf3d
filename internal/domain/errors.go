package domain

import "errors"

var (
	// ErrInvalidInput is returned for malformed or missing message fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when the teacher token does not match.
	ErrUnauthorized = errors.New("unauthorized teacher action")
	// ErrIllegalState is returned when an operation is not valid in the current session state.
	ErrIllegalState = errors.New("operation not allowed in current state")
	// ErrUnknownParticipant is returned when a participant id is not registered.
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrDuplicateAnswer is returned when a participant already answered the current question.
	ErrDuplicateAnswer = errors.New("answer already submitted")
	// ErrInvalidAnswerIndex is returned when an answer index is out of range.
	ErrInvalidAnswerIndex = errors.New("invalid answer index")
	// ErrNoActiveQuestion is returned when no question resolves at the current cursor.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
)

// ValidationError reports why a quiz document failed validation. Index is
// the offending question index, or -1 for quiz-level problems.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
