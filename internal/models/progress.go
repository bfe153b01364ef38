package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Badge identifiers are caller-defined strings; the set below mirrors the
// badges the platform awards out of the box but is intentionally open.
const (
	BadgeFirstQuiz     = "first_quiz"
	BadgePerfectScore  = "perfect_score"
	BadgeParticipation = "participation"
	BadgeDiscussion    = "discussion"
	BadgeAttendance    = "attendance"
	BadgeFastLearner   = "learner"
	BadgeTopPerformer  = "top_performer"
)

// ProgressLedger is the per-student record of points, derived level, badges
// and activity counters. One ledger per student, created when the student is
// provisioned. Level is never stored independently of points; every points
// change recomputes it.
type ProgressLedger struct {
	StudentID string `json:"student_id" gorm:"primaryKey;size:255"`

	Points int `json:"points" gorm:"not null;default:0"`
	Level  int `json:"level" gorm:"not null;default:1"`

	Badges datatypes.JSON `json:"badges" gorm:"type:jsonb;default:'[]'"`

	QuizzesAttempted int `json:"quizzes_attempted" gorm:"not null;default:0"`
	QuizzesPassed    int `json:"quizzes_passed" gorm:"not null;default:0"`
	DiscussionPosts  int `json:"discussion_posts" gorm:"not null;default:0"`

	// Recomputed snapshot, never incrementally accumulated.
	AttendanceRate float64 `json:"attendance_rate" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProgressLedger) TableName() string {
	return "progress_ledgers"
}

// BadgeList decodes the stored badge set. A nil or malformed column decodes
// to an empty list.
func (l *ProgressLedger) BadgeList() []string {
	var badges []string
	if len(l.Badges) == 0 {
		return badges
	}
	if err := json.Unmarshal(l.Badges, &badges); err != nil {
		return nil
	}
	return badges
}

func (l *ProgressLedger) HasBadge(badgeID string) bool {
	for _, b := range l.BadgeList() {
		if b == badgeID {
			return true
		}
	}
	return false
}

// SetBadges re-encodes the badge set. Errors cannot occur when encoding a
// string slice, so the result is assigned unconditionally.
func (l *ProgressLedger) SetBadges(badges []string) {
	encoded, _ := json.Marshal(badges)
	l.Badges = encoded
}

// LeaderboardEntry is derived from ledger snapshots on each query and never
// persisted.
type LeaderboardEntry struct {
	StudentID string `json:"student_id"`
	Points    int    `json:"points"`
	Level     int    `json:"level"`
	Rank      int    `json:"rank"`
}
