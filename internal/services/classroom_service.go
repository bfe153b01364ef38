package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/elearnhq/progression-service/internal/validator"
	"github.com/google/uuid"
)

type CreateClassroomRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Subject string `json:"subject" validate:"omitempty,max=100"`
	Code    string `json:"code" validate:"omitempty,min=4,max=10"`
}

// ClassroomService owns classroom records and the per-classroom progress
// summary rows the quiz and attendance flows keep fresh.
type ClassroomService interface {
	Create(ctx context.Context, req *CreateClassroomRequest, teacherID string) (*models.Classroom, error)
	GetByID(ctx context.Context, id uint) (*models.Classroom, error)
	GetProgress(ctx context.Context, classroomID uint) ([]*models.ClassProgress, error)
}

type classroomService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    utils.Logger
}

func NewClassroomService(repo repositories.Repository, v *validator.Validator, logger utils.Logger) ClassroomService {
	return &classroomService{
		repo:      repo,
		validator: v,
		logger:    logger,
	}
}

func (s *classroomService) Create(ctx context.Context, req *CreateClassroomRequest, teacherID string) (*models.Classroom, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code = generateClassroomCode()
	}

	classroom := &models.Classroom{
		TeacherID: teacherID,
		Name:      req.Name,
		Code:      code,
		Subject:   req.Subject,
		Status:    models.ClassroomActive,
	}

	if err := s.repo.Classroom().Create(ctx, classroom); err != nil {
		return nil, fmt.Errorf("failed to create classroom: %w", err)
	}

	s.logger.Info("Created classroom",
		"classroom_id", classroom.ID,
		"code", classroom.Code,
		"teacher_id", teacherID)
	return classroom, nil
}

func (s *classroomService) GetByID(ctx context.Context, id uint) (*models.Classroom, error) {
	classroom, err := s.repo.Classroom().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassroomNotFound
		}
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}
	return classroom, nil
}

func (s *classroomService) GetProgress(ctx context.Context, classroomID uint) ([]*models.ClassProgress, error) {
	if _, err := s.GetByID(ctx, classroomID); err != nil {
		return nil, err
	}

	progress, err := s.repo.ClassProgress().GetByClassroom(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get class progress: %w", err)
	}
	return progress, nil
}

// generateClassroomCode derives a short join code. Collisions surface as a
// unique-index violation on create and the caller can retry.
func generateClassroomCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}
