package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of progression events
type EventType string

const (
	// Attempt events
	EventQuizGraded EventType = "quiz.graded"

	// Ledger events
	EventPointsAwarded EventType = "progress.points_awarded"
	EventLevelUp       EventType = "progress.level_up"
	EventBadgeEarned   EventType = "progress.badge_earned"

	// Attendance events
	EventAttendanceMarked EventType = "attendance.marked"
)

// ProgressionEvent is the base event structure for all progression events
type ProgressionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type QuizGradedEvent struct {
	AttemptID   uint      `json:"attempt_id"`
	QuizID      uint      `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	StudentID   string    `json:"student_id"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  float64   `json:"percentage"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type PointsAwardedEvent struct {
	StudentID   string `json:"student_id"`
	Amount      int    `json:"amount"`
	TotalPoints int    `json:"total_points"`
	Reason      string `json:"reason"`
}

type LevelUpEvent struct {
	StudentID     string `json:"student_id"`
	PreviousLevel int    `json:"previous_level"`
	NewLevel      int    `json:"new_level"`
	TotalPoints   int    `json:"total_points"`
}

type BadgeEarnedEvent struct {
	StudentID string `json:"student_id"`
	BadgeID   string `json:"badge_id"`
}

type AttendanceMarkedEvent struct {
	ClassroomID uint      `json:"classroom_id"`
	Date        time.Time `json:"date"`
	RecordedBy  string    `json:"recorded_by"`
	Students    int       `json:"students"`
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *ProgressionEvent {
	return &ProgressionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "progression-service",
		Version:   "1.0",
		Data:      data,
	}
}

func NewQuizGradedEvent(attemptID, quizID uint, quizTitle, studentID string, score, total int, percentage float64, passed bool, submittedAt time.Time) *ProgressionEvent {
	return newEvent(EventQuizGraded, QuizGradedEvent{
		AttemptID:   attemptID,
		QuizID:      quizID,
		QuizTitle:   quizTitle,
		StudentID:   studentID,
		Score:       score,
		Total:       total,
		Percentage:  percentage,
		Passed:      passed,
		SubmittedAt: submittedAt,
	})
}

func NewPointsAwardedEvent(studentID string, amount, totalPoints int, reason string) *ProgressionEvent {
	return newEvent(EventPointsAwarded, PointsAwardedEvent{
		StudentID:   studentID,
		Amount:      amount,
		TotalPoints: totalPoints,
		Reason:      reason,
	})
}

func NewLevelUpEvent(studentID string, previousLevel, newLevel, totalPoints int) *ProgressionEvent {
	return newEvent(EventLevelUp, LevelUpEvent{
		StudentID:     studentID,
		PreviousLevel: previousLevel,
		NewLevel:      newLevel,
		TotalPoints:   totalPoints,
	})
}

func NewBadgeEarnedEvent(studentID, badgeID string) *ProgressionEvent {
	return newEvent(EventBadgeEarned, BadgeEarnedEvent{
		StudentID: studentID,
		BadgeID:   badgeID,
	})
}

func NewAttendanceMarkedEvent(classroomID uint, date time.Time, recordedBy string, students int) *ProgressionEvent {
	return newEvent(EventAttendanceMarked, AttendanceMarkedEvent{
		ClassroomID: classroomID,
		Date:        date,
		RecordedBy:  recordedBy,
		Students:    students,
	})
}
