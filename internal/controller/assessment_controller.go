package controller

import (
	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/internal/repository"
	"edu_assessment_backend/internal/service"
	"edu_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// @Summary Create an assessment draft
// @Tags Assessment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AssessmentRequest true "assessment"
// @Success 201 {object} util.Response
// @Router /api/teacher/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Create(user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, a)
}

// @Summary Update an assessment draft
// @Tags Assessment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Param body body service.AssessmentRequest true "assessment"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id} [put]
func (c *AssessmentController) Update(ctx *gin.Context) {
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Update(ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, a)
}

// @Summary List assessments
// @Tags Assessment
// @Produce json
// @Security BearerAuth
// @Param status query string false "status filter"
// @Param subjectId query string false "subject filter"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	filter := repository.AssessmentFilter{
		Status:    ctx.Query("status"),
		SubjectID: ctx.Query("subjectId"),
	}
	page, limit := pageParams(ctx)

	list, total, err := c.Service.List(filter, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

// @Summary Get an assessment
// @Tags Assessment
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	a, err := c.Service.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary Publish an assessment
// @Tags Assessment
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/publish [post]
func (c *AssessmentController) Publish(ctx *gin.Context) {
	a, err := c.Service.Publish(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary Archive an assessment
// @Tags Assessment
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/archive [post]
func (c *AssessmentController) Archive(ctx *gin.Context) {
	a, err := c.Service.Archive(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary Create a section in a draft assessment
// @Tags Assessment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Param body body service.SectionRequest true "section"
// @Success 201 {object} util.Response
// @Router /api/teacher/assessments/{id}/sections [post]
func (c *AssessmentController) CreateSection(ctx *gin.Context) {
	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.Service.CreateSection(ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, section)
}

// @Summary List sections of an assessment
// @Tags Assessment
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/sections [get]
func (c *AssessmentController) ListSections(ctx *gin.Context) {
	sections, err := c.Service.ListSections(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sections)
}

// @Summary Attach a bank question to a draft assessment
// @Tags Assessment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Param body body service.AttachQuestionRequest true "question reference"
// @Success 201 {object} util.Response
// @Router /api/teacher/assessments/{id}/questions [post]
func (c *AssessmentController) AttachQuestion(ctx *gin.Context) {
	var req service.AttachQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	aq, err := c.Service.AttachQuestion(ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, aq)
}

// @Summary List the questions of an assessment with bank details
// @Tags Assessment
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/questions [get]
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	details, err := c.Service.ListQuestionDetails(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, details)
}

// @Summary Detach a question from a draft assessment
// @Tags Assessment
// @Produce json
// @Security BearerAuth
// @Param id path string true "assessment id"
// @Param aqId path string true "assessment question id"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/questions/{aqId} [delete]
func (c *AssessmentController) RemoveQuestion(ctx *gin.Context) {
	if err := c.Service.RemoveQuestion(ctx.Param("id"), ctx.Param("aqId")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Student view: list published assessments
// @Tags Assessment
// @Produce json
// @Security BearerAuth
// @Param subjectId query string false "subject filter"
// @Success 200 {object} util.Response
// @Router /api/assessments [get]
func (c *AssessmentController) ListPublished(ctx *gin.Context) {
	filter := repository.AssessmentFilter{
		Status:    string(model.AssessmentPublished),
		SubjectID: ctx.Query("subjectId"),
	}
	page, limit := pageParams(ctx)

	list, total, err := c.Service.List(filter, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}
