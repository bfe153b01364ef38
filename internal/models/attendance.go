package models

import "time"

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// AttendanceRecord holds one mark per (classroom, student, date); a later
// mark for the same key replaces the status instead of inserting a duplicate.
type AttendanceRecord struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	ClassroomID uint             `json:"classroom_id" gorm:"not null;uniqueIndex:idx_attendance_key"`
	StudentID   string           `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_attendance_key"`
	Date        time.Time        `json:"date" gorm:"type:date;not null;uniqueIndex:idx_attendance_key"`
	Status      AttendanceStatus `json:"status" gorm:"not null;size:20" validate:"required,attendance_status"`

	RecordedBy string    `json:"recorded_by" gorm:"size:255"`
	RecordedAt time.Time `json:"recorded_at" gorm:"autoCreateTime"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// AttendanceSummary is the grouped per-student count report the surrounding
// system displays alongside the computed rate.
type AttendanceSummary struct {
	StudentID string  `json:"student_id"`
	Present   int     `json:"present"`
	Absent    int     `json:"absent"`
	Late      int     `json:"late"`
	Excused   int     `json:"excused"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}
