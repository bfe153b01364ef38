package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FreeText       QuestionType = "free_text"
)

type Quiz struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	ClassroomID uint    `json:"classroom_id" gorm:"not null;index"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	// Optional opaque secret gating attempt start. Compared verbatim; the
	// engine does not own credential storage.
	AccessSecret *string `json:"-" gorm:"size:100"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`

	// Computed (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

// Question is append-only once its quiz has received attempts; mutating the
// correct answer after grading would make past attempts inconsistent.
type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	QuizID uint         `json:"quiz_id" gorm:"not null;index"`
	Prompt string       `json:"prompt" gorm:"not null;size:500" validate:"required,min=1,max=500"`
	Type   QuestionType `json:"type" gorm:"not null;size:20" validate:"required,question_type"`

	// Labeled options, only meaningful for multiple_choice. Stored as a
	// label -> text object, e.g. {"A": "...", "B": "..."}; at most four.
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`

	CorrectAnswer string `json:"correct_answer" gorm:"not null;size:200" validate:"required,max=200"`
	Position      int    `json:"position" gorm:"not null;default:0"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (Question) TableName() string {
	return "questions"
}
