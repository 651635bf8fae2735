package controller

import (
	"edu_assessment_backend/internal/service"
	"edu_assessment_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MasteryController struct {
	Service *service.MasteryService
}

func NewMasteryController(svc *service.MasteryService) *MasteryController {
	return &MasteryController{Service: svc}
}

// @Summary Get own per-topic mastery
// @Tags Mastery
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/mastery [get]
func (c *MasteryController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.Service.ListForUser(user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary Teacher view: per-topic mastery of a student
// @Tags Mastery
// @Produce json
// @Security BearerAuth
// @Param userId path int true "user id"
// @Success 200 {object} util.Response
// @Router /api/teacher/mastery/{userId} [get]
func (c *MasteryController) ListForUser(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("userId"))
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	list, err := c.Service.ListForUser(uint(id))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, list)
}
