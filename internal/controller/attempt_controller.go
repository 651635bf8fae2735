package controller

import (
	"edu_assessment_backend/internal/service"
	"edu_assessment_backend/internal/util"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Machine *service.AttemptStateMachine
}

func NewAttemptController(machine *service.AttemptStateMachine) *AttemptController {
	return &AttemptController{Machine: machine}
}

// @Summary Start an attempt at a published assessment
// @Tags Attempt
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Success 201 {object} util.Response
// @Router /api/assessments/{id}/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.Machine.Start(ctx.Param("id"), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

// @Summary List own attempts at an assessment
// @Tags Attempt
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id}/attempts [get]
func (c *AttemptController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.Machine.ListForUser(ctx.Param("id"), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}

// @Summary Get attempt progress with rendered questions
// @Tags Attempt
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *AttemptController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.Machine.GetProgress(ctx.Param("id"), user.UserID, user.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

type answerRequest struct {
	AssessmentQuestionID string          `json:"assessmentQuestionId" binding:"required"`
	Answer               json.RawMessage `json:"answer" binding:"required"`
	TimeTakenSeconds     int             `json:"timeTakenSeconds"`
}

// @Summary Save or replace an answer on an in-progress attempt
// @Tags Attempt
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Param body body controller.answerRequest true "answer payload"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers [put]
func (c *AttemptController) Answer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req answerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Machine.Answer(ctx.Param("id"), user.UserID, req.AssessmentQuestionID, req.Answer, req.TimeTakenSeconds)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Submit an attempt for grading
// @Tags Attempt
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.Machine.Submit(ctx.Request.Context(), ctx.Param("id"), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// @Summary Review a finished attempt with answers revealed
// @Tags Attempt
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/review [get]
func (c *AttemptController) Review(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	review, err := c.Machine.Review(ctx.Param("id"), user.UserID, user.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, review)
}

// @Summary List attempts awaiting manual grading
// @Tags Attempt
// @Produce json
// @Security BearerAuth
// @Param assessmentId query string false "assessment filter"
// @Success 200 {object} util.Response
// @Router /api/teacher/attempts/pending [get]
func (c *AttemptController) ListPendingManual(ctx *gin.Context) {
	attempts, err := c.Machine.ListPendingManual(ctx.Query("assessmentId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

type manualGradeRequest struct {
	Scores   []service.ManualScoreRequest `json:"scores" binding:"required"`
	Feedback string                       `json:"feedback"`
}

// @Summary Record marker scores for constructed-response answers
// @Tags Attempt
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Param body body controller.manualGradeRequest true "marker scores"
// @Success 200 {object} util.Response
// @Router /api/teacher/attempts/{id}/grade [post]
func (c *AttemptController) ManualGrade(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req manualGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Machine.ManualGrade(ctx.Request.Context(), ctx.Param("id"), user.UserID, req.Scores, req.Feedback)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}
