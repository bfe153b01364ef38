package services

import (
	"strings"

	"github.com/elearnhq/progression-service/internal/models"
)

// GradeAnswer reports whether a submitted answer is correct for the given
// question. Comparison is exact after normalization (surrounding whitespace
// trimmed, lower-cased) for both question kinds; there is no partial credit
// and no fuzzy matching. A missing or empty submission is always incorrect,
// never an error.
func GradeAnswer(question *models.Question, submitted string) bool {
	normalized := normalizeAnswer(submitted)
	if normalized == "" {
		return false
	}
	return normalized == normalizeAnswer(question.CorrectAnswer)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
