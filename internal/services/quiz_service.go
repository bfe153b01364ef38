package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/elearnhq/progression-service/internal/validator"
)

// ===== REQUEST TYPES =====

type CreateQuestionRequest struct {
	Prompt        string              `json:"prompt" validate:"required,min=1,max=500"`
	Type          models.QuestionType `json:"type" validate:"required,question_type"`
	Options       map[string]string   `json:"options" validate:"omitempty,max=4"`
	CorrectAnswer string              `json:"correct_answer" validate:"required,max=200"`
}

type CreateQuizRequest struct {
	ClassroomID  uint                    `json:"classroom_id" validate:"required"`
	Title        string                  `json:"title" validate:"required,min=1,max=200"`
	Description  *string                 `json:"description" validate:"omitempty,max=1000"`
	AccessSecret *string                 `json:"access_secret" validate:"omitempty,max=100"`
	Questions    []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuizService owns quiz definitions. Questions are fixed at creation; a quiz
// with recorded attempts cannot be deleted, because attempts reference its
// questions.
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, createdBy string) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByClassroom(ctx context.Context, classroomID uint) ([]*models.Quiz, error)
	Delete(ctx context.Context, id uint, requestedBy string) error
}

type quizService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    utils.Logger
}

func NewQuizService(repo repositories.Repository, v *validator.Validator, logger utils.Logger) QuizService {
	return &quizService{
		repo:      repo,
		validator: v,
		logger:    logger,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, createdBy string) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	classroom, err := s.repo.Classroom().GetByID(ctx, req.ClassroomID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassroomNotFound
		}
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}
	if classroom.TeacherID != createdBy {
		return nil, NewPermissionError(createdBy, fmt.Sprintf("%d", req.ClassroomID), "classroom", "create_quiz", "only the classroom teacher can create quizzes")
	}

	quiz := &models.Quiz{
		ClassroomID:  req.ClassroomID,
		Title:        req.Title,
		Description:  req.Description,
		AccessSecret: req.AccessSecret,
		CreatedBy:    createdBy,
		Questions:    make([]models.Question, 0, len(req.Questions)),
	}

	var contentErrs ValidationErrors
	for i, qr := range req.Questions {
		question := models.Question{
			Prompt:        qr.Prompt,
			Type:          qr.Type,
			CorrectAnswer: qr.CorrectAnswer,
			Position:      i,
		}
		if len(qr.Options) > 0 {
			encoded, err := json.Marshal(qr.Options)
			if err != nil {
				return nil, fmt.Errorf("failed to encode options: %w", err)
			}
			question.Options = encoded
		}
		if errs := s.validator.Question().ValidateQuestion(&question); len(errs) > 0 {
			for _, ve := range errs {
				ve.Field = fmt.Sprintf("questions[%d].%s", i, ve.Field)
				contentErrs = append(contentErrs, ve)
			}
			continue
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	if len(contentErrs) > 0 {
		return nil, contentErrs
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	quiz.QuestionsCount = len(quiz.Questions)

	s.logger.Info("Created quiz",
		"quiz_id", quiz.ID,
		"classroom_id", quiz.ClassroomID,
		"questions", quiz.QuestionsCount,
		"created_by", createdBy)
	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	quiz.QuestionsCount = len(quiz.Questions)
	return quiz, nil
}

func (s *quizService) GetByClassroom(ctx context.Context, classroomID uint) ([]*models.Quiz, error) {
	quizzes, err := s.repo.Quiz().GetByClassroom(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	for _, quiz := range quizzes {
		quiz.QuestionsCount = len(quiz.Questions)
	}
	return quizzes, nil
}

func (s *quizService) Delete(ctx context.Context, id uint, requestedBy string) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.CreatedBy != requestedBy {
		return NewPermissionError(requestedBy, fmt.Sprintf("%d", id), "quiz", "delete", "only the quiz creator can delete it")
	}

	hasAttempts, err := s.repo.Quiz().HasAttempts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check quiz attempts: %w", err)
	}
	if hasAttempts {
		return ErrQuizNotEditable
	}

	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.logger.Info("Deleted quiz", "quiz_id", id, "requested_by", requestedBy)
	return nil
}
