package postgres

import (
	"context"
	"errors"

	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"gorm.io/gorm"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p ProgressPostgreSQL) Create(ctx context.Context, ledger *models.ProgressLedger) error {
	if err := p.db.WithContext(ctx).Create(ledger).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicate
		}
		return err
	}
	return nil
}

func (p ProgressPostgreSQL) GetByStudent(ctx context.Context, studentID string) (*models.ProgressLedger, error) {
	var ledger models.ProgressLedger
	if err := p.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&ledger).Error; err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (p ProgressPostgreSQL) Update(ctx context.Context, ledger *models.ProgressLedger) error {
	return p.db.WithContext(ctx).Save(ledger).Error
}

func (p ProgressPostgreSQL) ListAll(ctx context.Context) ([]*models.ProgressLedger, error) {
	var ledgers []*models.ProgressLedger
	if err := p.db.WithContext(ctx).Find(&ledgers).Error; err != nil {
		return nil, err
	}
	return ledgers, nil
}

func (p ProgressPostgreSQL) CountWithMorePoints(ctx context.Context, points int) (int64, error) {
	var count int64
	if err := p.db.WithContext(ctx).
		Model(&models.ProgressLedger{}).
		Where("points > ?", points).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
