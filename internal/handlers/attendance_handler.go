package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/services"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	BaseHandler
	attendanceService services.AttendanceService
	exportService     services.ExportService
}

func NewAttendanceHandler(attendanceService services.AttendanceService, exportService services.ExportService, logger utils.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler:       NewBaseHandler(logger),
		attendanceService: attendanceService,
		exportService:     exportService,
	}
}

// MarkAttendance records one day of attendance for a classroom
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	classroomID := ParseUintIDParam(c, "id")
	if classroomID == 0 {
		return
	}

	var req services.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Marking attendance", "classroom_id", classroomID, "date", req.Date)

	if err := h.attendanceService.Mark(c.Request.Context(), classroomID, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Attendance marked"})
}

// GetAttendanceReport returns the per-student grouped summary for a classroom
func (h *AttendanceHandler) GetAttendanceReport(c *gin.Context) {
	classroomID := ParseUintIDParam(c, "id")
	if classroomID == 0 {
		return
	}

	report, err := h.attendanceService.ClassroomReport(c.Request.Context(), classroomID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attendance report retrieved",
		Data:    report,
	})
}

// ExportAttendanceReport downloads the classroom report as an XLSX workbook
func (h *AttendanceHandler) ExportAttendanceReport(c *gin.Context) {
	classroomID := ParseUintIDParam(c, "id")
	if classroomID == 0 {
		return
	}

	data, err := h.exportService.ExportAttendanceReport(c.Request.Context(), classroomID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("attendance_%d_%s.xlsx", classroomID, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetStudentAttendance returns a student's records and summary, optionally
// narrowed with from/to date query parameters (YYYY-MM-DD, inclusive)
func (h *AttendanceHandler) GetStudentAttendance(c *gin.Context) {
	studentID := ParseStringIDParam(c, "id")
	if studentID == "" {
		return
	}

	var filters repositories.AttendanceFilters
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid from",
				Details: "must be a YYYY-MM-DD date",
			})
			return
		}
		filters.DateFrom = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid to",
				Details: "must be a YYYY-MM-DD date",
			})
			return
		}
		filters.DateTo = &parsed
	}

	response, err := h.attendanceService.GetStudentAttendance(c.Request.Context(), studentID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
