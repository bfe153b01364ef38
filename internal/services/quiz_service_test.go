package services

import (
	"context"
	"testing"

	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuizFixture(t *testing.T) (QuizService, *stubRepository) {
	repo := newStubRepository()
	svc := NewQuizService(repo, validator.New(), testLogger())
	return svc, repo
}

func validQuizRequest(classroomID uint) *CreateQuizRequest {
	return &CreateQuizRequest{
		ClassroomID: classroomID,
		Title:       "Cell Biology",
		Questions: []CreateQuestionRequest{
			{
				Prompt:        "Which organelle produces ATP?",
				Type:          models.MultipleChoice,
				Options:       map[string]string{"A": "Mitochondria", "B": "Nucleus", "C": "Ribosome"},
				CorrectAnswer: "A",
			},
			{
				Prompt:        "Name the control center of the cell",
				Type:          models.FreeText,
				CorrectAnswer: "nucleus",
			},
		},
	}
}

func TestQuizService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates quiz with positioned questions", func(t *testing.T) {
		svc, repo := newQuizFixture(t)
		classroom := seedClassroom(t, repo, "teacher-1")

		quiz, err := svc.Create(ctx, validQuizRequest(classroom.ID), "teacher-1")
		require.NoError(t, err)

		assert.NotZero(t, quiz.ID)
		assert.Equal(t, 2, quiz.QuestionsCount)
		assert.Equal(t, 0, quiz.Questions[0].Position)
		assert.Equal(t, 1, quiz.Questions[1].Position)
	})

	t.Run("only the classroom teacher can create", func(t *testing.T) {
		svc, repo := newQuizFixture(t)
		classroom := seedClassroom(t, repo, "teacher-1")

		_, err := svc.Create(ctx, validQuizRequest(classroom.ID), "teacher-2")
		var pe *PermissionError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("unknown classroom", func(t *testing.T) {
		svc, _ := newQuizFixture(t)
		_, err := svc.Create(ctx, validQuizRequest(42), "teacher-1")
		assert.ErrorIs(t, err, ErrClassroomNotFound)
	})

	t.Run("multiple choice answer must match an option", func(t *testing.T) {
		svc, repo := newQuizFixture(t)
		classroom := seedClassroom(t, repo, "teacher-1")

		req := validQuizRequest(classroom.ID)
		req.Questions[0].CorrectAnswer = "Z"
		_, err := svc.Create(ctx, req, "teacher-1")
		assert.True(t, IsValidation(err), "expected validation error, got %v", err)
	})

	t.Run("multiple choice needs at least two options", func(t *testing.T) {
		svc, repo := newQuizFixture(t)
		classroom := seedClassroom(t, repo, "teacher-1")

		req := validQuizRequest(classroom.ID)
		req.Questions[0].Options = map[string]string{"A": "Mitochondria"}
		_, err := svc.Create(ctx, req, "teacher-1")
		assert.True(t, IsValidation(err), "expected validation error, got %v", err)
	})

	t.Run("quiz needs at least one question", func(t *testing.T) {
		svc, repo := newQuizFixture(t)
		classroom := seedClassroom(t, repo, "teacher-1")

		req := validQuizRequest(classroom.ID)
		req.Questions = nil
		_, err := svc.Create(ctx, req, "teacher-1")
		assert.True(t, IsValidation(err), "expected validation error, got %v", err)
	})
}

func TestQuizService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newQuizFixture(t)
	classroom := seedClassroom(t, repo, "teacher-1")

	quiz, err := svc.Create(ctx, validQuizRequest(classroom.ID), "teacher-1")
	require.NoError(t, err)

	t.Run("only the creator can delete", func(t *testing.T) {
		err := svc.Delete(ctx, quiz.ID, "teacher-2")
		var pe *PermissionError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("blocked once the quiz has attempts", func(t *testing.T) {
		require.NoError(t, repo.Attempt().Create(ctx, &models.QuizAttempt{
			QuizID: quiz.ID, StudentID: "student-1", Total: 2,
		}))

		err := svc.Delete(ctx, quiz.ID, "teacher-1")
		assert.ErrorIs(t, err, ErrQuizNotEditable)
	})
}
