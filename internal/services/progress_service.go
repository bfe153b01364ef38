package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/elearnhq/progression-service/internal/events"
	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/utils"
)

// pointsPerLevel is the fixed width of a level band. Level is always derived
// from the points total, never stored independently, so a points correction
// that lowers the total also lowers the level.
const pointsPerLevel = 1000

// LevelForPoints derives the level from a points total: one level per full
// points band, floor of 1.
func LevelForPoints(points int) int {
	level := points/pointsPerLevel + 1
	if level < 1 {
		return 1
	}
	return level
}

// Policy carries the gamification knobs loaded from configuration.
type Policy struct {
	PassThreshold       float64
	PointsPerCorrect    int
	ParticipationPoints int
}

// ProgressService owns the per-student progress ledger. All mutations for one
// student are serialized; mutations for different students run in parallel.
type ProgressService interface {
	Provision(ctx context.Context, studentID string) (*models.ProgressLedger, error)
	GetByStudent(ctx context.Context, studentID string) (*models.ProgressLedger, error)

	AddPoints(ctx context.Context, studentID string, amount int, reason string) (*models.ProgressLedger, error)
	AddBadge(ctx context.Context, studentID, badgeID string) (*models.ProgressLedger, error)
	RecordQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) (*models.ProgressLedger, error)
	RecordDiscussionPost(ctx context.Context, studentID string) (*models.ProgressLedger, error)
	RecalculateAttendanceRate(ctx context.Context, studentID string) (*models.ProgressLedger, error)

	// WithRepository returns a service bound to repo, sharing the lock
	// table, so ledger mutations can join a caller's transaction.
	WithRepository(repo repositories.Repository) ProgressService
}

// studentLocks hands out one mutex per student id. Entries are never removed;
// the map grows with the number of active students, which is bounded and
// small.
type studentLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newStudentLocks() *studentLocks {
	return &studentLocks{locks: make(map[string]*sync.Mutex)}
}

func (t *studentLocks) lockFor(studentID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[studentID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[studentID] = lock
	}
	return lock
}

type progressService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	policy    Policy
	locks     *studentLocks
}

func NewProgressService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, policy Policy) ProgressService {
	return &progressService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		policy:    policy,
		locks:     newStudentLocks(),
	}
}

func (s *progressService) WithRepository(repo repositories.Repository) ProgressService {
	return &progressService{
		repo:      repo,
		publisher: s.publisher,
		logger:    s.logger,
		policy:    s.policy,
		locks:     s.locks,
	}
}

// mutate loads the student's ledger, applies fn under the per-student lock,
// recomputes the level and persists the result. fn sees a ledger it may
// modify in place.
func (s *progressService) mutate(ctx context.Context, studentID string, fn func(*models.ProgressLedger) error) (*models.ProgressLedger, error) {
	lock := s.locks.lockFor(studentID)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := s.repo.Progress().GetByStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	if err := fn(ledger); err != nil {
		return nil, err
	}

	ledger.Level = LevelForPoints(ledger.Points)

	if err := s.repo.Progress().Update(ctx, ledger); err != nil {
		return nil, fmt.Errorf("failed to update ledger: %w", err)
	}
	return ledger, nil
}

func (s *progressService) Provision(ctx context.Context, studentID string) (*models.ProgressLedger, error) {
	ledger := &models.ProgressLedger{
		StudentID: studentID,
		Points:    0,
		Level:     1,
	}
	ledger.SetBadges([]string{})

	if err := s.repo.Progress().Create(ctx, ledger); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrLedgerExists
		}
		return nil, fmt.Errorf("failed to provision ledger: %w", err)
	}

	s.logger.Info("Provisioned progress ledger", "student_id", studentID)
	return ledger, nil
}

func (s *progressService) GetByStudent(ctx context.Context, studentID string) (*models.ProgressLedger, error) {
	ledger, err := s.repo.Progress().GetByStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return ledger, nil
}

func (s *progressService) AddPoints(ctx context.Context, studentID string, amount int, reason string) (*models.ProgressLedger, error) {
	if amount < 0 {
		return nil, ErrNegativePoints
	}

	var previousLevel int
	ledger, err := s.mutate(ctx, studentID, func(l *models.ProgressLedger) error {
		previousLevel = l.Level
		l.Points += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishPointsEvents(ctx, ledger, amount, reason, previousLevel)
	return ledger, nil
}

func (s *progressService) AddBadge(ctx context.Context, studentID, badgeID string) (*models.ProgressLedger, error) {
	if badgeID == "" {
		return nil, ErrEmptyBadgeID
	}

	awarded := false
	ledger, err := s.mutate(ctx, studentID, func(l *models.ProgressLedger) error {
		awarded = addBadge(l, badgeID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if awarded {
		s.publishEvent(ctx, events.NewBadgeEarnedEvent(studentID, badgeID))
	}
	return ledger, nil
}

func (s *progressService) RecordQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) (*models.ProgressLedger, error) {
	passed := Passed(attempt, s.policy.PassThreshold)
	pointsEarned := s.policy.PointsPerCorrect * attempt.Score

	var (
		previousLevel int
		newBadges     []string
	)
	ledger, err := s.mutate(ctx, attempt.StudentID, func(l *models.ProgressLedger) error {
		previousLevel = l.Level

		l.QuizzesAttempted++
		if passed {
			l.QuizzesPassed++
		}
		l.Points += pointsEarned

		if l.QuizzesAttempted == 1 && addBadge(l, models.BadgeFirstQuiz) {
			newBadges = append(newBadges, models.BadgeFirstQuiz)
		}
		if attempt.Total > 0 && attempt.Score == attempt.Total && addBadge(l, models.BadgePerfectScore) {
			newBadges = append(newBadges, models.BadgePerfectScore)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Recorded quiz attempt on ledger",
		"student_id", attempt.StudentID,
		"quiz_id", attempt.QuizID,
		"score", attempt.Score,
		"total", attempt.Total,
		"passed", passed,
		"points_earned", pointsEarned)

	s.publishPointsEvents(ctx, ledger, pointsEarned, "quiz_attempt", previousLevel)
	for _, badgeID := range newBadges {
		s.publishEvent(ctx, events.NewBadgeEarnedEvent(attempt.StudentID, badgeID))
	}
	return ledger, nil
}

func (s *progressService) RecordDiscussionPost(ctx context.Context, studentID string) (*models.ProgressLedger, error) {
	var previousLevel int
	ledger, err := s.mutate(ctx, studentID, func(l *models.ProgressLedger) error {
		previousLevel = l.Level
		l.DiscussionPosts++
		l.Points += s.policy.ParticipationPoints
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishPointsEvents(ctx, ledger, s.policy.ParticipationPoints, "discussion_post", previousLevel)
	return ledger, nil
}

func (s *progressService) RecalculateAttendanceRate(ctx context.Context, studentID string) (*models.ProgressLedger, error) {
	records, err := s.repo.Attendance().List(ctx, repositories.AttendanceFilters{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance records: %w", err)
	}
	rate := AttendanceRate(records)

	return s.mutate(ctx, studentID, func(l *models.ProgressLedger) error {
		l.AttendanceRate = rate
		return nil
	})
}

// addBadge adds badgeID to the ledger's badge set and reports whether it was
// newly added.
func addBadge(ledger *models.ProgressLedger, badgeID string) bool {
	if ledger.HasBadge(badgeID) {
		return false
	}
	ledger.SetBadges(append(ledger.BadgeList(), badgeID))
	return true
}

func (s *progressService) publishPointsEvents(ctx context.Context, ledger *models.ProgressLedger, amount int, reason string, previousLevel int) {
	if amount > 0 {
		s.publishEvent(ctx, events.NewPointsAwardedEvent(ledger.StudentID, amount, ledger.Points, reason))
	}
	if ledger.Level > previousLevel {
		s.publishEvent(ctx, events.NewLevelUpEvent(ledger.StudentID, previousLevel, ledger.Level, ledger.Points))
	}
}

// publishEvent sends a progression event. Publish failures are logged and
// swallowed; the ledger update is already committed and events are
// best-effort notifications.
func (s *progressService) publishEvent(ctx context.Context, event *events.ProgressionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProgressionEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish progression event", "event_type", event.Type)
	}
}
