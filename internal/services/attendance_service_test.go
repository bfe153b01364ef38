package services

import (
	"context"
	"testing"
	"time"

	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(statuses ...models.AttendanceStatus) []*models.AttendanceRecord {
	out := make([]*models.AttendanceRecord, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, &models.AttendanceRecord{Status: status})
	}
	return out
}

func TestAttendanceRate(t *testing.T) {
	tests := []struct {
		name    string
		records []*models.AttendanceRecord
		want    float64
	}{
		{"no records", nil, 0.0},
		{"all present", records(models.AttendancePresent, models.AttendancePresent), 100.0},
		{"three of four present", records(
			models.AttendancePresent, models.AttendancePresent,
			models.AttendancePresent, models.AttendanceAbsent), 75.0},
		{"one of three rounds to two decimals", records(
			models.AttendancePresent, models.AttendanceAbsent, models.AttendanceAbsent), 33.33},
		{"two of three", records(
			models.AttendancePresent, models.AttendancePresent, models.AttendanceAbsent), 66.67},
		{"late counts in denominator only", records(
			models.AttendancePresent, models.AttendanceLate), 50.0},
		{"excused counts in denominator only", records(
			models.AttendancePresent, models.AttendanceExcused), 50.0},
		{"all absent", records(models.AttendanceAbsent, models.AttendanceAbsent), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AttendanceRate(tt.records), 0.001)
		})
	}
}

func TestSummarizeAttendance(t *testing.T) {
	summary := SummarizeAttendance("student-1", records(
		models.AttendancePresent, models.AttendancePresent,
		models.AttendanceAbsent, models.AttendanceLate, models.AttendanceExcused))

	assert.Equal(t, "student-1", summary.StudentID)
	assert.Equal(t, 2, summary.Present)
	assert.Equal(t, 1, summary.Absent)
	assert.Equal(t, 1, summary.Late)
	assert.Equal(t, 1, summary.Excused)
	assert.Equal(t, 5, summary.Total)
	assert.InDelta(t, 40.0, summary.Rate, 0.001)
}

func newAttendanceFixture() (AttendanceService, ProgressService, *stubRepository) {
	repo := newStubRepository()
	publisher := testPublisher()
	progress := NewProgressService(repo, publisher, testLogger(), testPolicy())
	svc := NewAttendanceService(repo, progress, publisher, validator.New(), testLogger())
	return svc, progress, repo
}

func seedClassroom(t *testing.T, repo *stubRepository, teacherID string) *models.Classroom {
	classroom := &models.Classroom{TeacherID: teacherID, Name: "Biology", Code: "BIO101", Status: models.ClassroomActive}
	require.NoError(t, repo.Classroom().Create(context.Background(), classroom))
	return classroom
}

func TestAttendanceService_Mark(t *testing.T) {
	ctx := context.Background()

	t.Run("marks a day and refreshes the ledger rate", func(t *testing.T) {
		svc, progress, repo := newAttendanceFixture()
		classroom := seedClassroom(t, repo, "teacher-1")
		provisionStudent(t, progress, "student-1")
		provisionStudent(t, progress, "student-2")

		err := svc.Mark(ctx, classroom.ID, &MarkAttendanceRequest{
			Date: "2026-03-02",
			Marks: []AttendanceMark{
				{StudentID: "student-1", Status: models.AttendancePresent},
				{StudentID: "student-2", Status: models.AttendanceAbsent},
			},
		}, "teacher-1")
		require.NoError(t, err)

		ledger, err := progress.GetByStudent(ctx, "student-1")
		require.NoError(t, err)
		assert.InDelta(t, 100.0, ledger.AttendanceRate, 0.001)

		ledger, err = progress.GetByStudent(ctx, "student-2")
		require.NoError(t, err)
		assert.Zero(t, ledger.AttendanceRate)
	})

	t.Run("re-marking the same day replaces the status", func(t *testing.T) {
		svc, progress, repo := newAttendanceFixture()
		classroom := seedClassroom(t, repo, "teacher-1")
		provisionStudent(t, progress, "student-1")

		mark := func(status models.AttendanceStatus) error {
			return svc.Mark(ctx, classroom.ID, &MarkAttendanceRequest{
				Date:  "2026-03-02",
				Marks: []AttendanceMark{{StudentID: "student-1", Status: status}},
			}, "teacher-1")
		}
		require.NoError(t, mark(models.AttendanceAbsent))
		require.NoError(t, mark(models.AttendancePresent))

		response, err := svc.GetStudentAttendance(ctx, "student-1", repositories.AttendanceFilters{})
		require.NoError(t, err)
		assert.Equal(t, 1, response.Summary.Total)
		assert.Equal(t, 1, response.Summary.Present)
		assert.InDelta(t, 100.0, response.Summary.Rate, 0.001)
	})

	t.Run("only the classroom teacher may mark", func(t *testing.T) {
		svc, _, repo := newAttendanceFixture()
		classroom := seedClassroom(t, repo, "teacher-1")

		err := svc.Mark(ctx, classroom.ID, &MarkAttendanceRequest{
			Date:  "2026-03-02",
			Marks: []AttendanceMark{{StudentID: "student-1", Status: models.AttendancePresent}},
		}, "teacher-2")
		assert.ErrorIs(t, err, ErrAttendanceForbidden)
	})

	t.Run("unknown classroom", func(t *testing.T) {
		svc, _, _ := newAttendanceFixture()

		err := svc.Mark(ctx, 42, &MarkAttendanceRequest{
			Date:  "2026-03-02",
			Marks: []AttendanceMark{{StudentID: "student-1", Status: models.AttendancePresent}},
		}, "teacher-1")
		assert.ErrorIs(t, err, ErrClassroomNotFound)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		svc, _, repo := newAttendanceFixture()
		classroom := seedClassroom(t, repo, "teacher-1")

		err := svc.Mark(ctx, classroom.ID, &MarkAttendanceRequest{
			Date:  "2026-03-02",
			Marks: []AttendanceMark{{StudentID: "student-1", Status: "vacationing"}},
		}, "teacher-1")
		assert.True(t, IsValidation(err), "expected validation error, got %v", err)
	})
}

func TestAttendanceService_ClassroomReport(t *testing.T) {
	ctx := context.Background()
	svc, progress, repo := newAttendanceFixture()
	classroom := seedClassroom(t, repo, "teacher-1")
	provisionStudent(t, progress, "student-1")
	provisionStudent(t, progress, "student-2")

	days := []string{"2026-03-02", "2026-03-03", "2026-03-04"}
	marks := map[string][]models.AttendanceStatus{
		"student-1": {models.AttendancePresent, models.AttendancePresent, models.AttendanceAbsent},
		"student-2": {models.AttendancePresent, models.AttendanceLate, models.AttendanceExcused},
	}
	for i, day := range days {
		req := &MarkAttendanceRequest{Date: day}
		for studentID, statuses := range marks {
			req.Marks = append(req.Marks, AttendanceMark{StudentID: studentID, Status: statuses[i]})
		}
		require.NoError(t, svc.Mark(ctx, classroom.ID, req, "teacher-1"))
	}

	report, err := svc.ClassroomReport(ctx, classroom.ID)
	require.NoError(t, err)
	require.Len(t, report, 2)

	assert.Equal(t, "student-1", report[0].StudentID)
	assert.Equal(t, 2, report[0].Present)
	assert.InDelta(t, 66.67, report[0].Rate, 0.001)

	assert.Equal(t, "student-2", report[1].StudentID)
	assert.Equal(t, 1, report[1].Present)
	assert.Equal(t, 1, report[1].Late)
	assert.Equal(t, 1, report[1].Excused)
	assert.InDelta(t, 33.33, report[1].Rate, 0.001)
}

func TestAttendanceService_GetStudentAttendance_DateRange(t *testing.T) {
	ctx := context.Background()
	svc, progress, repo := newAttendanceFixture()
	classroom := seedClassroom(t, repo, "teacher-1")
	provisionStudent(t, progress, "student-1")

	days := map[string]models.AttendanceStatus{
		"2026-03-02": models.AttendancePresent,
		"2026-03-03": models.AttendanceAbsent,
		"2026-03-04": models.AttendancePresent,
	}
	for day, status := range days {
		require.NoError(t, svc.Mark(ctx, classroom.ID, &MarkAttendanceRequest{
			Date:  day,
			Marks: []AttendanceMark{{StudentID: "student-1", Status: status}},
		}, "teacher-1"))
	}

	from := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	response, err := svc.GetStudentAttendance(ctx, "student-1", repositories.AttendanceFilters{
		DateFrom: &from,
		DateTo:   &to,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, response.Summary.Total)
	assert.Equal(t, 1, response.Summary.Present)
	assert.Len(t, response.Records, 2)

	// Unfiltered call still returns everything.
	response, err = svc.GetStudentAttendance(ctx, "student-1", repositories.AttendanceFilters{})
	require.NoError(t, err)
	assert.Equal(t, 3, response.Summary.Total)
}
