package handlers

import (
	"net/http"

	"github.com/elearnhq/progression-service/internal/services"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ClassroomHandler struct {
	BaseHandler
	classroomService services.ClassroomService
}

func NewClassroomHandler(classroomService services.ClassroomService, logger utils.Logger) *ClassroomHandler {
	return &ClassroomHandler{
		BaseHandler:      NewBaseHandler(logger),
		classroomService: classroomService,
	}
}

// CreateClassroom creates a classroom owned by the calling teacher
func (h *ClassroomHandler) CreateClassroom(c *gin.Context) {
	var req services.CreateClassroomRequest
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

	classroom, err := h.classroomService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, classroom)
}

// GetClassroom retrieves a classroom
func (h *ClassroomHandler) GetClassroom(c *gin.Context) {
	id := ParseUintIDParam(c, "id")
	if id == 0 {
		return
	}

	classroom, err := h.classroomService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, classroom)
}

// GetClassProgress returns the per-student progress rows for a classroom
func (h *ClassroomHandler) GetClassProgress(c *gin.Context) {
	classroomID := ParseUintIDParam(c, "id")
	if classroomID == 0 {
		return
	}

	progress, err := h.classroomService.GetProgress(c.Request.Context(), classroomID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Class progress retrieved",
		Data:    progress,
	})
}
