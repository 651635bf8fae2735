package controller

import (
	"edu_assessment_backend/internal/repository"
	"edu_assessment_backend/internal/service"
	"edu_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionBankController struct {
	Service *service.QuestionBankService
}

func NewQuestionBankController(svc *service.QuestionBankService) *QuestionBankController {
	return &QuestionBankController{Service: svc}
}

// @Summary Create a question bank item
// @Tags QuestionBank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionBankItemRequest true "question item"
// @Success 201 {object} util.Response
// @Router /api/teacher/questions [post]
func (c *QuestionBankController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionBankItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.Service.CreateItem(user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, item)
}

// @Summary List question bank items
// @Tags QuestionBank
// @Produce json
// @Security BearerAuth
// @Param subjectId query string false "subject filter"
// @Param topicId query string false "topic filter"
// @Param questionType query string false "type filter"
// @Param difficulty query string false "difficulty filter"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions [get]
func (c *QuestionBankController) List(ctx *gin.Context) {
	filter := repository.QuestionBankFilter{
		SubjectID:    ctx.Query("subjectId"),
		TopicID:      ctx.Query("topicId"),
		QuestionType: ctx.Query("questionType"),
		Difficulty:   ctx.Query("difficulty"),
		ActiveOnly:   ctx.Query("activeOnly") == "true",
	}
	page, limit := pageParams(ctx)

	items, total, err := c.Service.ListItems(filter, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: items, Total: total, Page: page, Limit: limit})
}

// @Summary Get a question bank item
// @Tags QuestionBank
// @Produce json
// @Security BearerAuth
// @Param id path string true "item id"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [get]
func (c *QuestionBankController) Get(ctx *gin.Context) {
	item, err := c.Service.GetItem(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// @Summary Update a question bank item
// @Tags QuestionBank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "item id"
// @Param body body service.QuestionBankItemRequest true "question item"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [put]
func (c *QuestionBankController) Update(ctx *gin.Context) {
	var req service.QuestionBankItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.Service.UpdateItem(ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, item)
}

// @Summary Delete a question bank item
// @Tags QuestionBank
// @Produce json
// @Security BearerAuth
// @Param id path string true "item id"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [delete]
func (c *QuestionBankController) Delete(ctx *gin.Context) {
	if err := c.Service.DeleteItem(ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
