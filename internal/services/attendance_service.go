package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/elearnhq/progression-service/internal/events"
	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/elearnhq/progression-service/internal/validator"
)

// AttendanceRate computes the percentage of records marked present, rounded
// to two decimals. Late, excused and absent marks count in the denominator
// only. No records means 0.0, never an error.
func AttendanceRate(records []*models.AttendanceRecord) float64 {
	if len(records) == 0 {
		return 0.0
	}
	present := 0
	for _, r := range records {
		if r.Status == models.AttendancePresent {
			present++
		}
	}
	rate := float64(present) / float64(len(records)) * 100
	return math.Round(rate*100) / 100
}

// SummarizeAttendance groups a student's records into per-status counts plus
// the computed rate.
func SummarizeAttendance(studentID string, records []*models.AttendanceRecord) *models.AttendanceSummary {
	summary := &models.AttendanceSummary{StudentID: studentID}
	for _, r := range records {
		switch r.Status {
		case models.AttendancePresent:
			summary.Present++
		case models.AttendanceAbsent:
			summary.Absent++
		case models.AttendanceLate:
			summary.Late++
		case models.AttendanceExcused:
			summary.Excused++
		}
		summary.Total++
	}
	summary.Rate = AttendanceRate(records)
	return summary
}

// ===== REQUEST / RESPONSE TYPES =====

type AttendanceMark struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required,attendance_status"`
}

type MarkAttendanceRequest struct {
	Date  string           `json:"date" validate:"required,datetime=2006-01-02"`
	Marks []AttendanceMark `json:"marks" validate:"required,min=1,dive"`
}

type StudentAttendanceResponse struct {
	Summary *models.AttendanceSummary  `json:"summary"`
	Records []*models.AttendanceRecord `json:"records"`
}

// AttendanceService marks attendance and produces the grouped reports.
type AttendanceService interface {
	Mark(ctx context.Context, classroomID uint, req *MarkAttendanceRequest, recordedBy string) error
	GetStudentAttendance(ctx context.Context, studentID string, filters repositories.AttendanceFilters) (*StudentAttendanceResponse, error)
	ClassroomReport(ctx context.Context, classroomID uint) ([]*models.AttendanceSummary, error)
}

type attendanceService struct {
	repo      repositories.Repository
	progress  ProgressService
	publisher events.EventPublisher
	validator *validator.Validator
	logger    utils.Logger
}

func NewAttendanceService(repo repositories.Repository, progress ProgressService, publisher events.EventPublisher, v *validator.Validator, logger utils.Logger) AttendanceService {
	return &attendanceService{
		repo:      repo,
		progress:  progress,
		publisher: publisher,
		validator: v,
		logger:    logger,
	}
}

// Mark upserts one day of attendance for a classroom. Re-marking the same
// (student, date) replaces the earlier status. After the records land, each
// student's classroom progress row and ledger rate snapshot are refreshed.
func (s *attendanceService) Mark(ctx context.Context, classroomID uint, req *MarkAttendanceRequest, recordedBy string) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return NewValidationError("date", "must be a valid YYYY-MM-DD date", req.Date)
	}

	classroom, err := s.repo.Classroom().GetByID(ctx, classroomID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrClassroomNotFound
		}
		return fmt.Errorf("failed to get classroom: %w", err)
	}
	if classroom.TeacherID != recordedBy {
		return ErrAttendanceForbidden
	}

	for _, mark := range req.Marks {
		record := &models.AttendanceRecord{
			ClassroomID: classroomID,
			StudentID:   mark.StudentID,
			Date:        date,
			Status:      mark.Status,
			RecordedBy:  recordedBy,
		}
		if err := s.repo.Attendance().Upsert(ctx, record); err != nil {
			return fmt.Errorf("failed to upsert attendance for student %s: %w", mark.StudentID, err)
		}
	}

	for _, mark := range req.Marks {
		if err := s.refreshClassAttendance(ctx, classroomID, mark.StudentID); err != nil {
			s.logger.LogError(err, "Failed to refresh class attendance counts",
				"classroom_id", classroomID, "student_id", mark.StudentID)
		}
		if _, err := s.progress.RecalculateAttendanceRate(ctx, mark.StudentID); err != nil && !IsNotFound(err) {
			s.logger.LogError(err, "Failed to refresh ledger attendance rate",
				"student_id", mark.StudentID)
		}
	}

	s.logger.Info("Marked attendance",
		"classroom_id", classroomID,
		"date", req.Date,
		"students", len(req.Marks),
		"recorded_by", recordedBy)

	s.publishEvent(ctx, events.NewAttendanceMarkedEvent(classroomID, date, recordedBy, len(req.Marks)))
	return nil
}

// GetStudentAttendance returns the student's records and summary, optionally
// narrowed to a date range. The summary covers only the returned window.
func (s *attendanceService) GetStudentAttendance(ctx context.Context, studentID string, filters repositories.AttendanceFilters) (*StudentAttendanceResponse, error) {
	filters.StudentID = &studentID
	records, err := s.repo.Attendance().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance records: %w", err)
	}
	return &StudentAttendanceResponse{
		Summary: SummarizeAttendance(studentID, records),
		Records: records,
	}, nil
}

// ClassroomReport groups a classroom's records by student, one summary row
// per student, ordered by student id.
func (s *attendanceService) ClassroomReport(ctx context.Context, classroomID uint) ([]*models.AttendanceSummary, error) {
	if _, err := s.repo.Classroom().GetByID(ctx, classroomID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassroomNotFound
		}
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}

	records, err := s.repo.Attendance().List(ctx, repositories.AttendanceFilters{ClassroomID: &classroomID})
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom attendance: %w", err)
	}

	byStudent := make(map[string][]*models.AttendanceRecord)
	for _, r := range records {
		byStudent[r.StudentID] = append(byStudent[r.StudentID], r)
	}

	report := make([]*models.AttendanceSummary, 0, len(byStudent))
	for studentID, studentRecords := range byStudent {
		report = append(report, SummarizeAttendance(studentID, studentRecords))
	}
	sort.Slice(report, func(i, j int) bool {
		return report[i].StudentID < report[j].StudentID
	})
	return report, nil
}

// refreshClassAttendance recounts the classroom progress row from the stored
// records instead of incrementing, so re-marks stay consistent.
func (s *attendanceService) refreshClassAttendance(ctx context.Context, classroomID uint, studentID string) error {
	records, err := s.repo.Attendance().List(ctx, repositories.AttendanceFilters{
		ClassroomID: &classroomID,
		StudentID:   &studentID,
	})
	if err != nil {
		return fmt.Errorf("failed to get attendance records: %w", err)
	}

	progress, err := s.repo.ClassProgress().GetOrCreate(ctx, classroomID, studentID)
	if err != nil {
		return fmt.Errorf("failed to get class progress: %w", err)
	}

	present := 0
	for _, r := range records {
		if r.Status == models.AttendancePresent {
			present++
		}
	}
	progress.AttendanceCount = present
	progress.TotalAttendance = len(records)

	if err := s.repo.ClassProgress().Update(ctx, progress); err != nil {
		return fmt.Errorf("failed to update class progress: %w", err)
	}
	return nil
}

func (s *attendanceService) publishEvent(ctx context.Context, event *events.ProgressionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProgressionEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish progression event", "event_type", event.Type)
	}
}
