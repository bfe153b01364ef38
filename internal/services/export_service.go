package services

import (
	"context"
	"fmt"

	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ExportService renders leaderboard and attendance reports as XLSX workbooks
// for download.
type ExportService interface {
	ExportLeaderboard(ctx context.Context) ([]byte, error)
	ExportAttendanceReport(ctx context.Context, classroomID uint) ([]byte, error)
}

type exportService struct {
	leaderboard LeaderboardService
	attendance  AttendanceService
	logger      utils.Logger
}

func NewExportService(leaderboard LeaderboardService, attendance AttendanceService, logger utils.Logger) ExportService {
	return &exportService{
		leaderboard: leaderboard,
		attendance:  attendance,
		logger:      logger,
	}
}

func (s *exportService) ExportLeaderboard(ctx context.Context) ([]byte, error) {
	entries, err := s.leaderboard.GetLeaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Leaderboard"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Rank", "Student ID", "Points", "Level"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, entry := range entries {
		row := []interface{}{entry.Rank, entry.StudentID, entry.Points, entry.Level}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported leaderboard", "entries", len(entries))
	return buf.Bytes(), nil
}

func (s *exportService) ExportAttendanceReport(ctx context.Context, classroomID uint) ([]byte, error) {
	report, err := s.attendance.ClassroomReport(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Attendance"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Student ID", "Present", "Absent", "Late", "Excused", "Total", "Rate (%)"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, summary := range report {
		row := []interface{}{
			summary.StudentID,
			summary.Present,
			summary.Absent,
			summary.Late,
			summary.Excused,
			summary.Total,
			summary.Rate,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported attendance report", "classroom_id", classroomID, "students", len(report))
	return buf.Bytes(), nil
}
