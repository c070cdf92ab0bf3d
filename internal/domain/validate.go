package domain

import (
	"fmt"
	"strings"
)

// ValidateQuiz checks a quiz document structurally. Validation is fail-fast:
// the first offending question wins and its index is reported.
func ValidateQuiz(quiz Quiz) error {
	if len(quiz.Questions) == 0 {
		return &ValidationError{Index: -1, Reason: "quiz must include a non-empty questions list"}
	}
	for i, q := range quiz.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("question %d must include non-empty text", i)}
		}
		if len(q.Options) < 2 {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("question %d must include at least 2 options", i)}
		}
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return &ValidationError{Index: i, Reason: fmt.Sprintf("question %d has invalid option(s)", i)}
			}
		}
	}
	return nil
}
