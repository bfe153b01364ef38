package models

import (
	"time"

	"gorm.io/gorm"
)

type ClassroomStatus string

const (
	ClassroomActive   ClassroomStatus = "active"
	ClassroomArchived ClassroomStatus = "archived"
)

type Classroom struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	TeacherID string          `json:"teacher_id" gorm:"not null;size:255;index"`
	Name      string          `json:"name" gorm:"not null;size:255" validate:"required,min=1,max=255"`
	Code      string          `json:"code" gorm:"uniqueIndex;not null;size:10"`
	Subject   string          `json:"subject" gorm:"size:100"`
	Status    ClassroomStatus `json:"status" gorm:"default:active;size:20"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Classroom) TableName() string {
	return "classrooms"
}

// ClassProgress is the per-classroom progress summary row, refreshed as quiz
// attempts and attendance marks arrive.
type ClassProgress struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	StudentID   string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_class_progress_key"`
	ClassroomID uint   `json:"classroom_id" gorm:"not null;uniqueIndex:idx_class_progress_key"`

	QuizAttempts    int     `json:"quiz_attempts" gorm:"not null;default:0"`
	QuizPassed      int     `json:"quiz_passed" gorm:"not null;default:0"`
	AverageScore    float64 `json:"average_score" gorm:"not null;default:0"`
	AttendanceCount int     `json:"attendance_count" gorm:"not null;default:0"`
	TotalAttendance int     `json:"total_attendance" gorm:"not null;default:0"`

	LastActive time.Time `json:"last_active" gorm:"autoUpdateTime"`
}

func (ClassProgress) TableName() string {
	return "class_progress"
}

// AttendancePercentage mirrors the classroom report view: zero when no
// attendance has been taken yet.
func (p *ClassProgress) AttendancePercentage() float64 {
	if p.TotalAttendance == 0 {
		return 0.0
	}
	return float64(p.AttendanceCount) / float64(p.TotalAttendance) * 100
}
