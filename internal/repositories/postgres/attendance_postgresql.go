package postgres

import (
	"context"

	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendancePostgreSQL struct {
	db *gorm.DB
}

func NewAttendancePostgreSQL(db *gorm.DB) repositories.AttendanceRepository {
	return &AttendancePostgreSQL{db: db}
}

// Upsert inserts the record, or replaces the status and recorder when a
// record already exists for the same (classroom, student, date) key.
func (a AttendancePostgreSQL) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "classroom_id"},
			{Name: "student_id"},
			{Name: "date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"status", "recorded_by"}),
	}).Create(record).Error
}

func (a AttendancePostgreSQL) List(ctx context.Context, filters repositories.AttendanceFilters) ([]*models.AttendanceRecord, error) {
	query := a.db.WithContext(ctx).Model(&models.AttendanceRecord{})

	if filters.ClassroomID != nil {
		query = query.Where("classroom_id = ?", *filters.ClassroomID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}

	var records []*models.AttendanceRecord
	if err := query.Order("date DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
