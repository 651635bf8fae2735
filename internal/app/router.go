package app

import (
	"edu_assessment_backend/internal/config"
	"edu_assessment_backend/internal/middleware"
	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/pkg/monitoring"
	"edu_assessment_backend/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/assessments", c.assessment.ListPublished)
	rg.GET("/assessments/:id/attempts", c.attempt.ListMine)

	rg.GET("/attempts/:id", c.attempt.Get)
	rg.GET("/attempts/:id/review", c.attempt.Review)

	rg.GET("/mastery", c.mastery.ListMine)

	// Attempt writes get a tighter per-IP budget than the global limiter.
	writes := rg.Group("")
	writes.Use(security.RateLimiter(120, time.Minute))
	{
		writes.POST("/assessments/:id/attempts", c.attempt.Start)
		writes.PUT("/attempts/:id/answers", c.attempt.Answer)
		writes.POST("/attempts/:id/submit", c.attempt.Submit)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/questions", c.bank.Create)
		teacher.GET("/questions", c.bank.List)
		teacher.GET("/questions/:id", c.bank.Get)
		teacher.PUT("/questions/:id", c.bank.Update)
		teacher.DELETE("/questions/:id", c.bank.Delete)

		teacher.POST("/assessments", c.assessment.Create)
		teacher.GET("/assessments", c.assessment.List)
		teacher.GET("/assessments/:id", c.assessment.Get)
		teacher.PUT("/assessments/:id", c.assessment.Update)
		teacher.POST("/assessments/:id/publish", c.assessment.Publish)
		teacher.POST("/assessments/:id/archive", c.assessment.Archive)
		teacher.POST("/assessments/:id/sections", c.assessment.CreateSection)
		teacher.GET("/assessments/:id/sections", c.assessment.ListSections)
		teacher.POST("/assessments/:id/questions", c.assessment.AttachQuestion)
		teacher.GET("/assessments/:id/questions", c.assessment.ListQuestions)
		teacher.DELETE("/assessments/:id/questions/:aqId", c.assessment.RemoveQuestion)

		teacher.GET("/attempts/pending", c.attempt.ListPendingManual)
		teacher.POST("/attempts/:id/grade", c.attempt.ManualGrade)

		teacher.GET("/mastery/:userId", c.mastery.ListForUser)
	}
}
