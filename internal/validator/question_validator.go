package validator

import (
	"encoding/json"
	"strings"

	apperrors "github.com/elearnhq/progression-service/internal/errors"
	"github.com/elearnhq/progression-service/internal/models"
)

const maxOptions = 4

// QuestionValidator checks quiz content invariants that struct tags cannot
// express.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion enforces the content rules for a question definition:
// multiple_choice questions carry between two and four labeled options and a
// correct answer that matches one of the option labels or values; free_text
// questions need a non-empty canonical answer.
func (v *QuestionValidator) ValidateQuestion(q *models.Question) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	switch q.Type {
	case models.MultipleChoice:
		options, err := decodeOptions(q.Options)
		if err != nil {
			errs = append(errs, *apperrors.NewValidationError("options", "must be a JSON object of label to text", string(q.Options)))
			return errs
		}
		if len(options) < 2 {
			errs = append(errs, *apperrors.NewValidationError("options", "must provide at least 2 options", len(options)))
		}
		if len(options) > maxOptions {
			errs = append(errs, *apperrors.NewValidationError("options", "must provide at most 4 options", len(options)))
		}
		if !answerMatchesOption(q.CorrectAnswer, options) {
			errs = append(errs, *apperrors.NewValidationError("correct_answer", "must equal one of the option labels or values", q.CorrectAnswer))
		}

	case models.FreeText:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			errs = append(errs, *apperrors.NewValidationError("correct_answer", "is required", q.CorrectAnswer))
		}

	default:
		errs = append(errs, *apperrors.NewValidationError("type", "must be a valid question type (multiple_choice, free_text)", string(q.Type)))
	}

	return errs
}

func decodeOptions(raw []byte) (map[string]string, error) {
	options := map[string]string{}
	if len(raw) == 0 {
		return options, nil
	}
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func answerMatchesOption(answer string, options map[string]string) bool {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	for label, value := range options {
		if normalized == strings.ToLower(strings.TrimSpace(label)) ||
			normalized == strings.ToLower(strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}
