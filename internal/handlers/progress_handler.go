package handlers

import (
	"net/http"

	"github.com/elearnhq/progression-service/internal/services"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

type addPointsRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type addBadgeRequest struct {
	BadgeID string `json:"badge_id"`
}

// ProvisionStudent creates a zero ledger for a student
func (h *ProgressHandler) ProvisionStudent(c *gin.Context) {
	studentID := ParseStringIDParam(c, "id")
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Provisioning student ledger", "student_id", studentID)

	ledger, err := h.progressService.Provision(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ledger)
}

// GetProgress returns the student's ledger snapshot
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	studentID := ParseStringIDParam(c, "id")
	if studentID == "" {
		return
	}

	ledger, err := h.progressService.GetByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledger)
}

// AddPoints awards points to a student
func (h *ProgressHandler) AddPoints(c *gin.Context) {
	studentID := ParseStringIDParam(c, "id")
	if studentID == "" {
		return
	}

	var req addPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	ledger, err := h.progressService.AddPoints(c.Request.Context(), studentID, req.Amount, req.Reason)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledger)
}

// AddBadge awards a badge to a student; re-awarding is a no-op
func (h *ProgressHandler) AddBadge(c *gin.Context) {
	studentID := ParseStringIDParam(c, "id")
	if studentID == "" {
		return
	}

	var req addBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	ledger, err := h.progressService.AddBadge(c.Request.Context(), studentID, req.BadgeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledger)
}

// RecordDiscussionPost bumps the participation counter
func (h *ProgressHandler) RecordDiscussionPost(c *gin.Context) {
	studentID := ParseStringIDParam(c, "id")
	if studentID == "" {
		return
	}

	ledger, err := h.progressService.RecordDiscussionPost(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledger)
}
