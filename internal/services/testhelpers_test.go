package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/elearnhq/progression-service/internal/events"
	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/repositories/memory"
	"github.com/elearnhq/progression-service/internal/utils"
)

// stubRepository is an in-memory repositories.Repository for service tests.
// The progress side delegates to the real memory store; the rest are plain
// maps with just enough behavior for the flows under test.
type stubRepository struct {
	progress *memory.ProgressStore

	quizzes    map[uint]*models.Quiz
	nextQuizID uint

	attempts      map[uint]*models.QuizAttempt
	nextAttemptID uint

	attendance map[string]*models.AttendanceRecord

	classrooms      map[uint]*models.Classroom
	nextClassroomID uint

	classProgress map[string]*models.ClassProgress
	nextCPID      uint

	users map[string]*models.User

	// When set, ledger updates fail with this error. Used to exercise
	// rollback paths.
	progressUpdateErr error
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		progress:      memory.NewProgressStore(),
		quizzes:       make(map[uint]*models.Quiz),
		attempts:      make(map[uint]*models.QuizAttempt),
		attendance:    make(map[string]*models.AttendanceRecord),
		classrooms:    make(map[uint]*models.Classroom),
		classProgress: make(map[string]*models.ClassProgress),
		users:         make(map[string]*models.User),
	}
}

func (r *stubRepository) Quiz() repositories.QuizRepository       { return (*stubQuizRepo)(r) }
func (r *stubRepository) Attempt() repositories.AttemptRepository { return (*stubAttemptRepo)(r) }
func (r *stubRepository) Progress() repositories.ProgressRepository {
	if r.progressUpdateErr != nil {
		return &failingProgressRepo{ProgressRepository: r.progress, updateErr: r.progressUpdateErr}
	}
	return r.progress
}
func (r *stubRepository) Attendance() repositories.AttendanceRepository       { return (*stubAttendanceRepo)(r) }
func (r *stubRepository) Classroom() repositories.ClassroomRepository         { return (*stubClassroomRepo)(r) }
func (r *stubRepository) ClassProgress() repositories.ClassProgressRepository { return (*stubClassProgressRepo)(r) }
func (r *stubRepository) User() repositories.UserRepository                   { return (*stubUserRepo)(r) }

// WithTransaction runs fn against the same store but restores attempt rows
// written inside fn when it fails. That is the rollback the grading flows
// rely on; other tables are left to the individual tests.
func (r *stubRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	attemptsBefore := make(map[uint]*models.QuizAttempt, len(r.attempts))
	for id, attempt := range r.attempts {
		attemptsBefore[id] = attempt
	}
	nextAttemptIDBefore := r.nextAttemptID

	if err := fn(r); err != nil {
		r.attempts = attemptsBefore
		r.nextAttemptID = nextAttemptIDBefore
		return err
	}
	return nil
}

// failingProgressRepo wraps a ProgressRepository and fails every Update.
type failingProgressRepo struct {
	repositories.ProgressRepository
	updateErr error
}

func (f *failingProgressRepo) Update(context.Context, *models.ProgressLedger) error {
	return f.updateErr
}
func (r *stubRepository) Ping(context.Context) error { return nil }
func (r *stubRepository) Close() error               { return nil }

// ===== QUIZ =====

type stubQuizRepo stubRepository

func (r *stubQuizRepo) Create(_ context.Context, quiz *models.Quiz) error {
	r.nextQuizID++
	quiz.ID = r.nextQuizID
	for i := range quiz.Questions {
		quiz.Questions[i].ID = quiz.ID*100 + uint(i) + 1
		quiz.Questions[i].QuizID = quiz.ID
	}
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r *stubQuizRepo) GetByID(_ context.Context, id uint) (*models.Quiz, error) {
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return quiz, nil
}

func (r *stubQuizRepo) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	return r.GetByID(ctx, id)
}

func (r *stubQuizRepo) GetByClassroom(_ context.Context, classroomID uint) ([]*models.Quiz, error) {
	var out []*models.Quiz
	for _, quiz := range r.quizzes {
		if quiz.ClassroomID == classroomID {
			out = append(out, quiz)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubQuizRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.quizzes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.quizzes, id)
	return nil
}

func (r *stubQuizRepo) HasAttempts(_ context.Context, id uint) (bool, error) {
	for _, attempt := range r.attempts {
		if attempt.QuizID == id {
			return true, nil
		}
	}
	return false, nil
}

// ===== ATTEMPT =====

type stubAttemptRepo stubRepository

func (r *stubAttemptRepo) Create(_ context.Context, attempt *models.QuizAttempt) error {
	r.nextAttemptID++
	attempt.ID = r.nextAttemptID
	r.attempts[attempt.ID] = attempt
	return nil
}

func (r *stubAttemptRepo) GetByID(_ context.Context, id uint) (*models.QuizAttempt, error) {
	attempt, ok := r.attempts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return attempt, nil
}

func (r *stubAttemptRepo) List(_ context.Context, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	var out []*models.QuizAttempt
	for _, attempt := range r.attempts {
		if filters.QuizID != nil && attempt.QuizID != *filters.QuizID {
			continue
		}
		if filters.StudentID != nil && attempt.StudentID != *filters.StudentID {
			continue
		}
		out = append(out, attempt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubAttemptRepo) GetByQuizAndStudent(ctx context.Context, quizID uint, studentID string) ([]*models.QuizAttempt, error) {
	attempts, _, err := r.List(ctx, repositories.AttemptFilters{QuizID: &quizID, StudentID: &studentID})
	return attempts, err
}

func (r *stubAttemptRepo) CountByQuizAndStudent(ctx context.Context, quizID uint, studentID string) (int64, error) {
	_, total, err := r.List(ctx, repositories.AttemptFilters{QuizID: &quizID, StudentID: &studentID})
	return total, err
}

// ===== ATTENDANCE =====

type stubAttendanceRepo stubRepository

func attendanceKey(classroomID uint, studentID string, date time.Time) string {
	return fmt.Sprintf("%d|%s|%s", classroomID, studentID, date.Format("2006-01-02"))
}

func (r *stubAttendanceRepo) Upsert(_ context.Context, record *models.AttendanceRecord) error {
	key := attendanceKey(record.ClassroomID, record.StudentID, record.Date)
	if existing, ok := r.attendance[key]; ok {
		existing.Status = record.Status
		existing.RecordedBy = record.RecordedBy
		return nil
	}
	stored := *record
	r.attendance[key] = &stored
	return nil
}

func (r *stubAttendanceRepo) List(_ context.Context, filters repositories.AttendanceFilters) ([]*models.AttendanceRecord, error) {
	var out []*models.AttendanceRecord
	for _, record := range r.attendance {
		if filters.ClassroomID != nil && record.ClassroomID != *filters.ClassroomID {
			continue
		}
		if filters.StudentID != nil && record.StudentID != *filters.StudentID {
			continue
		}
		if filters.DateFrom != nil && record.Date.Before(*filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && record.Date.After(*filters.DateTo) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// ===== CLASSROOM =====

type stubClassroomRepo stubRepository

func (r *stubClassroomRepo) Create(_ context.Context, classroom *models.Classroom) error {
	r.nextClassroomID++
	classroom.ID = r.nextClassroomID
	r.classrooms[classroom.ID] = classroom
	return nil
}

func (r *stubClassroomRepo) GetByID(_ context.Context, id uint) (*models.Classroom, error) {
	classroom, ok := r.classrooms[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return classroom, nil
}

func (r *stubClassroomRepo) GetByCode(_ context.Context, code string) (*models.Classroom, error) {
	for _, classroom := range r.classrooms {
		if classroom.Code == code {
			return classroom, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// ===== CLASS PROGRESS =====

type stubClassProgressRepo stubRepository

func classProgressKey(classroomID uint, studentID string) string {
	return fmt.Sprintf("%d|%s", classroomID, studentID)
}

func (r *stubClassProgressRepo) GetOrCreate(_ context.Context, classroomID uint, studentID string) (*models.ClassProgress, error) {
	key := classProgressKey(classroomID, studentID)
	if progress, ok := r.classProgress[key]; ok {
		return progress, nil
	}
	r.nextCPID++
	progress := &models.ClassProgress{
		ID:          r.nextCPID,
		ClassroomID: classroomID,
		StudentID:   studentID,
	}
	r.classProgress[key] = progress
	return progress, nil
}

func (r *stubClassProgressRepo) Update(_ context.Context, progress *models.ClassProgress) error {
	r.classProgress[classProgressKey(progress.ClassroomID, progress.StudentID)] = progress
	return nil
}

func (r *stubClassProgressRepo) GetByClassroom(_ context.Context, classroomID uint) ([]*models.ClassProgress, error) {
	var out []*models.ClassProgress
	for _, progress := range r.classProgress {
		if progress.ClassroomID == classroomID {
			out = append(out, progress)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

// ===== USER =====

type stubUserRepo stubRepository

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

// ===== SHARED FIXTURES =====

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
}

func testPublisher() *events.MockEventPublisher {
	return events.NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
}

func testPolicy() Policy {
	return Policy{
		PassThreshold:       0.5,
		PointsPerCorrect:    10,
		ParticipationPoints: 5,
	}
}

func provisionStudent(t interface{ Fatalf(string, ...any) }, svc ProgressService, studentID string) *models.ProgressLedger {
	ledger, err := svc.Provision(context.Background(), studentID)
	if err != nil {
		t.Fatalf("failed to provision %s: %v", studentID, err)
	}
	return ledger
}
