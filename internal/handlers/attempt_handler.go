package handlers

import (
	"net/http"

	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/services"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// SubmitAttempt grades a submission for a quiz and records the result
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	quizID := ParseUintIDParam(c, "id")
	if quizID == 0 {
		return
	}

	var req services.SubmitAttemptRequest
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

	h.LogRequest(c, "Submitting quiz attempt", "quiz_id", quizID)

	result, err := h.attemptService.Submit(c.Request.Context(), quizID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetAttempt retrieves one graded attempt
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID := ParseUintIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	attempt, err := h.attemptService.GetByID(c.Request.Context(), attemptID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// ListQuizAttempts lists the attempts recorded for a quiz (creator only)
func (h *AttemptHandler) ListQuizAttempts(c *gin.Context) {
	quizID := ParseUintIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page := ParseIntQuery(c, "page", 1)
	size := ParseIntQuery(c, "size", 20)
	filters := repositories.AttemptFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}

	attempts, total, err := h.attemptService.ListByQuiz(c.Request.Context(), quizID, userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"total":    total,
		"page":     page,
		"size":     size,
	})
}
