package handlers

import (
	"net/http"

	"github.com/elearnhq/progression-service/internal/auth"
	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/services"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	quizHandler        *QuizHandler
	attemptHandler     *AttemptHandler
	progressHandler    *ProgressHandler
	leaderboardHandler *LeaderboardHandler
	attendanceHandler  *AttendanceHandler
	classroomHandler   *ClassroomHandler

	authMiddleware *auth.Middleware
}

type Services struct {
	Quiz        services.QuizService
	Attempt     services.AttemptService
	Progress    services.ProgressService
	Leaderboard services.LeaderboardService
	Attendance  services.AttendanceService
	Classroom   services.ClassroomService
	Export      services.ExportService
}

func NewHandlerManager(svcs Services, authMiddleware *auth.Middleware, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		quizHandler:        NewQuizHandler(svcs.Quiz, logger),
		attemptHandler:     NewAttemptHandler(svcs.Attempt, logger),
		progressHandler:    NewProgressHandler(svcs.Progress, logger),
		leaderboardHandler: NewLeaderboardHandler(svcs.Leaderboard, svcs.Export, logger),
		attendanceHandler:  NewAttendanceHandler(svcs.Attendance, svcs.Export, logger),
		classroomHandler:   NewClassroomHandler(svcs.Classroom, logger),
		authMiddleware:     authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "progression-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())
	{
		teacherOnly := hm.authMiddleware.RequireRole(models.RoleTeacher)

		students := v1.Group("/students")
		{
			students.POST("/:id/provision", teacherOnly, hm.progressHandler.ProvisionStudent)
			students.GET("/:id/progress", hm.progressHandler.GetProgress)
			students.POST("/:id/points", teacherOnly, hm.progressHandler.AddPoints)
			students.POST("/:id/badges", teacherOnly, hm.progressHandler.AddBadge)
			students.POST("/:id/discussion-posts", hm.progressHandler.RecordDiscussionPost)
			students.GET("/:id/attendance", hm.attendanceHandler.GetStudentAttendance)
		}

		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", teacherOnly, hm.quizHandler.CreateQuiz)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.DELETE("/:id", teacherOnly, hm.quizHandler.DeleteQuiz)
			quizzes.POST("/:id/attempts", hm.attemptHandler.SubmitAttempt)
			quizzes.GET("/:id/attempts", teacherOnly, hm.attemptHandler.ListQuizAttempts)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
		}

		leaderboard := v1.Group("/leaderboard")
		{
			leaderboard.GET("", hm.leaderboardHandler.GetLeaderboard)
			leaderboard.GET("/export", teacherOnly, hm.leaderboardHandler.ExportLeaderboard)
		}

		classrooms := v1.Group("/classrooms")
		{
			classrooms.POST("", teacherOnly, hm.classroomHandler.CreateClassroom)
			classrooms.GET("/:id", hm.classroomHandler.GetClassroom)
			classrooms.GET("/:id/quizzes", hm.quizHandler.ListClassroomQuizzes)
			classrooms.POST("/:id/attendance", teacherOnly, hm.attendanceHandler.MarkAttendance)
			classrooms.GET("/:id/attendance/report", teacherOnly, hm.attendanceHandler.GetAttendanceReport)
			classrooms.GET("/:id/attendance/report/export", teacherOnly, hm.attendanceHandler.ExportAttendanceReport)
			classrooms.GET("/:id/progress", teacherOnly, hm.classroomHandler.GetClassProgress)
		}
	}
}
