package controller

import (
	"edu_assessment_backend/internal/grading"
	"edu_assessment_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps service errors onto the response envelope. Unknown errors
// are logged and masked as 500.
func respondError(ctx *gin.Context, err error) {
	var mismatch *grading.StructuralMismatchError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrAssessmentNotFound),
		errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrNotPublished),
		errors.Is(err, util.ErrNotDraft),
		errors.Is(err, util.ErrAttemptClosed),
		errors.Is(err, util.ErrAttemptNotFinished),
		errors.Is(err, util.ErrQuestionLocked),
		errors.Is(err, util.ErrAttemptLimitExceeded):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrOutOfWindow),
		errors.Is(err, util.ErrNoQuestions):
		util.BadRequest(ctx, err.Error())
	case errors.As(err, &mismatch):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func pageParams(ctx *gin.Context) (int, int) {
	page := 1
	limit := 20
	if n, err := strconv.Atoi(ctx.Query("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(ctx.Query("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}
	return page, limit
}
