package postgres

import (
	"context"
	"errors"

	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"gorm.io/gorm"
)

type ClassProgressPostgreSQL struct {
	db *gorm.DB
}

func NewClassProgressPostgreSQL(db *gorm.DB) repositories.ClassProgressRepository {
	return &ClassProgressPostgreSQL{db: db}
}

func (c ClassProgressPostgreSQL) GetOrCreate(ctx context.Context, classroomID uint, studentID string) (*models.ClassProgress, error) {
	var progress models.ClassProgress
	err := c.db.WithContext(ctx).
		Where("classroom_id = ? AND student_id = ?", classroomID, studentID).
		First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress = models.ClassProgress{
		ClassroomID: classroomID,
		StudentID:   studentID,
	}
	if err := c.db.WithContext(ctx).Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (c ClassProgressPostgreSQL) Update(ctx context.Context, progress *models.ClassProgress) error {
	return c.db.WithContext(ctx).Save(progress).Error
}

func (c ClassProgressPostgreSQL) GetByClassroom(ctx context.Context, classroomID uint) ([]*models.ClassProgress, error) {
	var records []*models.ClassProgress
	if err := c.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
