package postgres

import (
	"context"

	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"gorm.io/gorm"
)

type ClassroomPostgreSQL struct {
	db *gorm.DB
}

func NewClassroomPostgreSQL(db *gorm.DB) repositories.ClassroomRepository {
	return &ClassroomPostgreSQL{db: db}
}

func (c ClassroomPostgreSQL) Create(ctx context.Context, classroom *models.Classroom) error {
	return c.db.WithContext(ctx).Create(classroom).Error
}

func (c ClassroomPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := c.db.WithContext(ctx).First(&classroom, id).Error; err != nil {
		return nil, err
	}
	return &classroom, nil
}

func (c ClassroomPostgreSQL) GetByCode(ctx context.Context, code string) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := c.db.WithContext(ctx).
		Where("code = ?", code).
		First(&classroom).Error; err != nil {
		return nil, err
	}
	return &classroom, nil
}
