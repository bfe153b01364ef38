package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/elearnhq/progression-service/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a create would violate a uniqueness key.
	ErrDuplicate = errors.New("record already exists")
)

// IsNotFoundError reports whether err represents a missing record from any
// backing store.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// Repository aggregates the per-entity repositories behind one handle so
// services depend on a single narrow interface.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository
	Progress() ProgressRepository
	Attendance() AttendanceRepository
	Classroom() ClassroomRepository
	ClassProgress() ClassProgressRepository
	User() UserRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	QuizID    *uint      `json:"quiz_id"`
	StudentID *string    `json:"student_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

type AttendanceFilters struct {
	ClassroomID *uint      `json:"classroom_id"`
	StudentID   *string    `json:"student_id"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
}

// ===== PER-ENTITY REPOSITORIES =====

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	GetByClassroom(ctx context.Context, classroomID uint) ([]*models.Quiz, error)
	Delete(ctx context.Context, id uint) error
	HasAttempts(ctx context.Context, id uint) (bool, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	List(ctx context.Context, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	GetByQuizAndStudent(ctx context.Context, quizID uint, studentID string) ([]*models.QuizAttempt, error)
	CountByQuizAndStudent(ctx context.Context, quizID uint, studentID string) (int64, error)
}

type ProgressRepository interface {
	Create(ctx context.Context, ledger *models.ProgressLedger) error
	GetByStudent(ctx context.Context, studentID string) (*models.ProgressLedger, error)
	Update(ctx context.Context, ledger *models.ProgressLedger) error
	ListAll(ctx context.Context) ([]*models.ProgressLedger, error)
	CountWithMorePoints(ctx context.Context, points int) (int64, error)
}

type AttendanceRepository interface {
	// Upsert replaces the status when a record already exists for the
	// (classroom, student, date) key.
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	// List returns records matching every filter that is set.
	List(ctx context.Context, filters AttendanceFilters) ([]*models.AttendanceRecord, error)
}

type ClassroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	GetByID(ctx context.Context, id uint) (*models.Classroom, error)
	GetByCode(ctx context.Context, code string) (*models.Classroom, error)
}

type ClassProgressRepository interface {
	GetOrCreate(ctx context.Context, classroomID uint, studentID string) (*models.ClassProgress, error)
	Update(ctx context.Context, progress *models.ClassProgress) error
	GetByClassroom(ctx context.Context, classroomID uint) ([]*models.ClassProgress, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}
