package services

import (
	"context"
	"fmt"

	"github.com/elearnhq/progression-service/internal/events"
	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/utils"
)

// ===== REQUEST / RESPONSE TYPES =====

type SubmitAttemptRequest struct {
	// Answers maps question id to the submitted answer. Questions missing
	// from the map are graded as unanswered; ids the quiz does not contain
	// are ignored.
	Answers      map[uint]string `json:"answers"`
	AccessSecret *string         `json:"access_secret"`
}

type AttemptResult struct {
	Attempt *models.QuizAttempt    `json:"attempt"`
	Ledger  *models.ProgressLedger `json:"ledger"`
}

// AttemptService grades submissions and records the results on the student's
// ledger and classroom progress row.
type AttemptService interface {
	Submit(ctx context.Context, quizID uint, req *SubmitAttemptRequest, studentID string) (*AttemptResult, error)
	GetByID(ctx context.Context, attemptID uint, requesterID string) (*models.QuizAttempt, error)
	ListByQuiz(ctx context.Context, quizID uint, requesterID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error)
}

type attemptService struct {
	repo      repositories.Repository
	progress  ProgressService
	publisher events.EventPublisher
	logger    utils.Logger
	policy    Policy
}

func NewAttemptService(repo repositories.Repository, progress ProgressService, publisher events.EventPublisher, logger utils.Logger, policy Policy) AttemptService {
	return &attemptService{
		repo:      repo,
		progress:  progress,
		publisher: publisher,
		logger:    logger,
		policy:    policy,
	}
}

// Submit grades a submission in one shot. Grading itself is pure; only the
// persisted attempt, the ledger update and the published event are side
// effects. Each call creates exactly one attempt.
func (s *attemptService) Submit(ctx context.Context, quizID uint, req *SubmitAttemptRequest, studentID string) (*AttemptResult, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.AccessSecret != nil && *quiz.AccessSecret != "" {
		if req.AccessSecret == nil || *req.AccessSecret != *quiz.AccessSecret {
			return nil, ErrQuizSecretMismatch
		}
	}

	// The student must be provisioned before attempting; grading without a
	// ledger to record on would drop the progression side of the result.
	if _, err := s.progress.GetByStudent(ctx, studentID); err != nil {
		return nil, err
	}

	attempt := ScoreQuiz(quiz, req.Answers)
	attempt.StudentID = studentID
	attempt.Passed = Passed(attempt, s.policy.PassThreshold)

	// The attempt row and the ledger update commit or roll back together,
	// so a ledger failure never leaves an orphaned attempt behind.
	var ledger *models.ProgressLedger
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Attempt().Create(ctx, attempt); err != nil {
			return fmt.Errorf("failed to persist attempt: %w", err)
		}
		ledger, err = s.progress.WithRepository(txRepo).RecordQuizAttempt(ctx, attempt)
		if err != nil {
			return fmt.Errorf("failed to record attempt on ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.refreshClassProgress(ctx, quiz.ClassroomID, attempt); err != nil {
		s.logger.LogError(err, "Failed to refresh class progress",
			"classroom_id", quiz.ClassroomID, "student_id", studentID)
	}

	s.logger.Info("Graded quiz attempt",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"student_id", studentID,
		"score", attempt.Score,
		"total", attempt.Total,
		"passed", attempt.Passed)

	s.publishEvent(ctx, events.NewQuizGradedEvent(
		attempt.ID, quizID, quiz.Title, studentID,
		attempt.Score, attempt.Total, attempt.Percentage(), attempt.Passed, attempt.SubmittedAt))

	return &AttemptResult{Attempt: attempt, Ledger: ledger}, nil
}

func (s *attemptService) GetByID(ctx context.Context, attemptID uint, requesterID string) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.StudentID != requesterID {
		quiz, err := s.repo.Quiz().GetByID(ctx, attempt.QuizID)
		if err != nil {
			return nil, fmt.Errorf("failed to get quiz: %w", err)
		}
		if quiz.CreatedBy != requesterID {
			return nil, ErrAttemptAccessDenied
		}
	}
	return attempt, nil
}

func (s *attemptService) ListByQuiz(ctx context.Context, quizID uint, requesterID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, 0, ErrQuizNotFound
		}
		return nil, 0, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.CreatedBy != requesterID {
		return nil, 0, NewPermissionError(requesterID, fmt.Sprintf("%d", quizID), "quiz", "list_attempts", "only the quiz creator can list attempts")
	}

	filters.QuizID = &quizID
	return s.repo.Attempt().List(ctx, filters)
}

// refreshClassProgress folds the new attempt into the per-classroom summary
// row using a running average over the attempt count.
func (s *attemptService) refreshClassProgress(ctx context.Context, classroomID uint, attempt *models.QuizAttempt) error {
	progress, err := s.repo.ClassProgress().GetOrCreate(ctx, classroomID, attempt.StudentID)
	if err != nil {
		return fmt.Errorf("failed to get class progress: %w", err)
	}

	progress.QuizAttempts++
	if attempt.Passed {
		progress.QuizPassed++
	}
	n := float64(progress.QuizAttempts)
	progress.AverageScore = (progress.AverageScore*(n-1) + attempt.Percentage()) / n

	if err := s.repo.ClassProgress().Update(ctx, progress); err != nil {
		return fmt.Errorf("failed to update class progress: %w", err)
	}
	return nil
}

func (s *attemptService) publishEvent(ctx context.Context, event *events.ProgressionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProgressionEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish progression event", "event_type", event.Type)
	}
}
