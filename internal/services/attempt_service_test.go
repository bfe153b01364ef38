package services

import (
	"context"
	"errors"
	"testing"

	"github.com/elearnhq/progression-service/internal/events"
	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttemptFixture(t *testing.T) (AttemptService, ProgressService, *events.MockEventPublisher, *stubRepository) {
	repo := newStubRepository()
	publisher := testPublisher()
	progress := NewProgressService(repo, publisher, testLogger(), testPolicy())
	svc := NewAttemptService(repo, progress, publisher, testLogger(), testPolicy())
	return svc, progress, publisher, repo
}

func seedQuiz(t *testing.T, repo *stubRepository, accessSecret *string) *models.Quiz {
	quiz := &models.Quiz{
		ClassroomID:  1,
		Title:        "Cell Biology",
		CreatedBy:    "teacher-1",
		AccessSecret: accessSecret,
		Questions: []models.Question{
			{Type: models.MultipleChoice, CorrectAnswer: "A"},
			{Type: models.MultipleChoice, CorrectAnswer: "B"},
			{Type: models.FreeText, CorrectAnswer: "nucleus"},
			{Type: models.FreeText, CorrectAnswer: "ribosome"},
		},
	}
	require.NoError(t, repo.Quiz().Create(context.Background(), quiz))
	return quiz
}

func TestAttemptService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("grades, persists and records on the ledger", func(t *testing.T) {
		svc, progress, publisher, repo := newAttemptFixture(t)
		quiz := seedQuiz(t, repo, nil)
		provisionStudent(t, progress, "student-1")

		result, err := svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{
			Answers: map[uint]string{
				quiz.Questions[0].ID: "a",
				quiz.Questions[1].ID: "B",
				quiz.Questions[2].ID: " Nucleus ",
				quiz.Questions[3].ID: "mitochondria",
			},
		}, "student-1")
		require.NoError(t, err)

		assert.Equal(t, 3, result.Attempt.Score)
		assert.Equal(t, 4, result.Attempt.Total)
		assert.True(t, result.Attempt.Passed)
		assert.NotZero(t, result.Attempt.ID)

		assert.Equal(t, 1, result.Ledger.QuizzesAttempted)
		assert.Equal(t, 30, result.Ledger.Points)

		graded := publisher.EventsOfType(events.EventQuizGraded)
		require.Len(t, graded, 1)
		data := graded[0].Data.(events.QuizGradedEvent)
		assert.Equal(t, "student-1", data.StudentID)
		assert.InDelta(t, 75.0, data.Percentage, 0.001)

		// Classroom progress row picked up the attempt.
		cp, err := repo.ClassProgress().GetOrCreate(ctx, quiz.ClassroomID, "student-1")
		require.NoError(t, err)
		assert.Equal(t, 1, cp.QuizAttempts)
		assert.Equal(t, 1, cp.QuizPassed)
		assert.InDelta(t, 75.0, cp.AverageScore, 0.001)
	})

	t.Run("ledger failure rolls back the attempt row", func(t *testing.T) {
		svc, progress, _, repo := newAttemptFixture(t)
		quiz := seedQuiz(t, repo, nil)
		provisionStudent(t, progress, "student-1")

		repo.progressUpdateErr = errors.New("ledger write refused")
		_, err := svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{}, "student-1")
		require.Error(t, err)

		attempts, err := repo.Attempt().GetByQuizAndStudent(ctx, quiz.ID, "student-1")
		require.NoError(t, err)
		assert.Empty(t, attempts)

		// A retry after the failure clears must not double count.
		repo.progressUpdateErr = nil
		result, err := svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{}, "student-1")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Ledger.QuizzesAttempted)

		attempts, err = repo.Attempt().GetByQuizAndStudent(ctx, quiz.ID, "student-1")
		require.NoError(t, err)
		assert.Len(t, attempts, 1)
	})

	t.Run("unknown quiz", func(t *testing.T) {
		svc, progress, _, _ := newAttemptFixture(t)
		provisionStudent(t, progress, "student-1")

		_, err := svc.Submit(ctx, 42, &SubmitAttemptRequest{}, "student-1")
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})

	t.Run("unprovisioned student", func(t *testing.T) {
		svc, _, _, repo := newAttemptFixture(t)
		quiz := seedQuiz(t, repo, nil)

		_, err := svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{}, "ghost")
		assert.ErrorIs(t, err, ErrLedgerNotFound)
	})

	t.Run("access secret is compared verbatim", func(t *testing.T) {
		svc, progress, _, repo := newAttemptFixture(t)
		secret := "let-me-in"
		quiz := seedQuiz(t, repo, &secret)
		provisionStudent(t, progress, "student-1")

		_, err := svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{}, "student-1")
		assert.ErrorIs(t, err, ErrQuizSecretMismatch)

		wrong := "LET-ME-IN"
		_, err = svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{AccessSecret: &wrong}, "student-1")
		assert.ErrorIs(t, err, ErrQuizSecretMismatch)

		_, err = svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{AccessSecret: &secret}, "student-1")
		assert.NoError(t, err)
	})

	t.Run("each submission creates a separate attempt", func(t *testing.T) {
		svc, progress, _, repo := newAttemptFixture(t)
		quiz := seedQuiz(t, repo, nil)
		provisionStudent(t, progress, "student-1")

		_, err := svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{}, "student-1")
		require.NoError(t, err)
		_, err = svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{}, "student-1")
		require.NoError(t, err)

		attempts, err := repo.Attempt().GetByQuizAndStudent(ctx, quiz.ID, "student-1")
		require.NoError(t, err)
		assert.Len(t, attempts, 2)
	})
}

func TestAttemptService_GetByID(t *testing.T) {
	ctx := context.Background()
	svc, progress, _, repo := newAttemptFixture(t)
	quiz := seedQuiz(t, repo, nil)
	provisionStudent(t, progress, "student-1")

	result, err := svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{}, "student-1")
	require.NoError(t, err)

	t.Run("student sees their own attempt", func(t *testing.T) {
		attempt, err := svc.GetByID(ctx, result.Attempt.ID, "student-1")
		require.NoError(t, err)
		assert.Equal(t, result.Attempt.ID, attempt.ID)
	})

	t.Run("quiz creator sees the attempt", func(t *testing.T) {
		_, err := svc.GetByID(ctx, result.Attempt.ID, "teacher-1")
		assert.NoError(t, err)
	})

	t.Run("other students are denied", func(t *testing.T) {
		_, err := svc.GetByID(ctx, result.Attempt.ID, "student-2")
		assert.ErrorIs(t, err, ErrAttemptAccessDenied)
	})
}

func TestAttemptService_ListByQuiz(t *testing.T) {
	ctx := context.Background()
	svc, progress, _, repo := newAttemptFixture(t)
	quiz := seedQuiz(t, repo, nil)
	provisionStudent(t, progress, "student-1")

	_, err := svc.Submit(ctx, quiz.ID, &SubmitAttemptRequest{}, "student-1")
	require.NoError(t, err)

	attempts, total, err := svc.ListByQuiz(ctx, quiz.ID, "teacher-1", repositories.AttemptFilters{})
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
	assert.EqualValues(t, 1, total)

	_, _, err = svc.ListByQuiz(ctx, quiz.ID, "student-1", repositories.AttemptFilters{})
	var pe *PermissionError
	assert.ErrorAs(t, err, &pe)
}
