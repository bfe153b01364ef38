package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/elearnhq/progression-service/internal/services"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	BaseHandler
	leaderboardService services.LeaderboardService
	exportService      services.ExportService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService, exportService services.ExportService, logger utils.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		BaseHandler:        NewBaseHandler(logger),
		leaderboardService: leaderboardService,
		exportService:      exportService,
	}
}

// GetLeaderboard returns the current board; with student_id set it also
// returns that student's own rank even outside the top entries
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.leaderboardService.GetLeaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response := gin.H{"entries": entries}

	if studentID := c.Query("student_id"); studentID != "" {
		rank, err := h.leaderboardService.GetStudentRank(c.Request.Context(), studentID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		response["student"] = rank
	}

	c.JSON(http.StatusOK, response)
}

// ExportLeaderboard downloads the board as an XLSX workbook
func (h *LeaderboardHandler) ExportLeaderboard(c *gin.Context) {
	data, err := h.exportService.ExportLeaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leaderboard_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
