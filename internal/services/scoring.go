package services

import (
	"time"

	"github.com/elearnhq/progression-service/internal/models"
)

// ScoreQuiz grades a full submission against a quiz definition and builds the
// attempt record. The quiz is the authority on which questions count:
// answers for unknown question ids are ignored, and a question without a
// submitted answer is graded against the empty string. Pure and idempotent
// given identical inputs; persistence is the caller's responsibility.
func ScoreQuiz(quiz *models.Quiz, answers map[uint]string) *models.QuizAttempt {
	attempt := &models.QuizAttempt{
		QuizID:      quiz.ID,
		Total:       len(quiz.Questions),
		SubmittedAt: time.Now(),
		Answers:     make([]models.AttemptAnswer, 0, len(quiz.Questions)),
	}

	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		submitted := answers[question.ID]
		correct := GradeAnswer(question, submitted)
		if correct {
			attempt.Score++
		}
		attempt.Answers = append(attempt.Answers, models.AttemptAnswer{
			QuestionID: question.ID,
			Submitted:  submitted,
			IsCorrect:  correct,
		})
	}

	return attempt
}

// Passed applies the pass policy to an attempt: the correct fraction must
// strictly exceed the threshold. An empty quiz (total == 0) never passes.
func Passed(attempt *models.QuizAttempt, passThreshold float64) bool {
	if attempt.Total == 0 {
		return false
	}
	return float64(attempt.Score)/float64(attempt.Total) > passThreshold
}
