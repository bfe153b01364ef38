package postgres

import (
	"context"

	"github.com/elearnhq/progression-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm-backed implementation of repositories.Repository.
type Repository struct {
	db *gorm.DB

	quiz          repositories.QuizRepository
	attempt       repositories.AttemptRepository
	progress      repositories.ProgressRepository
	attendance    repositories.AttendanceRepository
	classroom     repositories.ClassroomRepository
	classProgress repositories.ClassProgressRepository
	user          repositories.UserRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		quiz:          NewQuizPostgreSQL(db),
		attempt:       NewAttemptPostgreSQL(db),
		progress:      NewProgressPostgreSQL(db),
		attendance:    NewAttendancePostgreSQL(db),
		classroom:     NewClassroomPostgreSQL(db),
		classProgress: NewClassProgressPostgreSQL(db),
		user:          NewUserPostgreSQL(db),
	}
}

func (r *Repository) Quiz() repositories.QuizRepository                   { return r.quiz }
func (r *Repository) Attempt() repositories.AttemptRepository             { return r.attempt }
func (r *Repository) Progress() repositories.ProgressRepository           { return r.progress }
func (r *Repository) Attendance() repositories.AttendanceRepository       { return r.attendance }
func (r *Repository) Classroom() repositories.ClassroomRepository         { return r.classroom }
func (r *Repository) ClassProgress() repositories.ClassProgressRepository { return r.classProgress }
func (r *Repository) User() repositories.UserRepository                   { return r.user }

// WithTransaction runs fn against a repository bound to a single database
// transaction, committing on nil and rolling back on error.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
