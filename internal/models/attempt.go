package models

import "time"

// QuizAttempt is one graded submission of answers for a quiz by a student.
// Created exactly once per submission event; the engine itself is
// attempt-count-agnostic.
type QuizAttempt struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	QuizID    uint   `json:"quiz_id" gorm:"not null;index"`
	StudentID string `json:"student_id" gorm:"not null;size:255;index"`

	Score       int       `json:"score" gorm:"not null"`
	Total       int       `json:"total" gorm:"not null"`
	Passed      bool      `json:"passed" gorm:"not null;default:false"`
	SubmittedAt time.Time `json:"submitted_at"`

	Answers []AttemptAnswer `json:"answers" gorm:"foreignKey:AttemptID"`
}

type AttemptAnswer struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	AttemptID  uint   `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Submitted  string `json:"submitted" gorm:"size:300"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
}

// Percentage returns the attempt score as a percentage, treating an empty
// quiz (total == 0) as 0 rather than dividing by zero.
func (a *QuizAttempt) Percentage() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.Total) * 100
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
