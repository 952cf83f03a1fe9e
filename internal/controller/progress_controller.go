package controller

import (
	"elearning_backend/internal/service"
	"elearning_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// ReportPlaybackRequest 观看进度上报
type ReportPlaybackRequest struct {
	WatchTime *int `json:"watchTime" binding:"required"`
}

// ReportPlayback godoc
// @Summary 上报观看进度
// @Description 记录内容的累计观看秒数。时长等于内容总时长时判定完成并触发章节/模块级联
// @Tags 进度
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "内容ID"
// @Param   body body ReportPlaybackRequest true "观看秒数"
// @Success 200 {object} util.Response{data=service.PlaybackResult}
// @Failure 400 {object} util.Response "观看秒数非法"
// @Failure 403 {object} util.Response "内容未解锁"
// @Failure 404 {object} util.Response "内容不存在"
// @Router /api/content-progress/{id} [post]
func (c *ProgressController) ReportPlayback(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	contentID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid content id")
		return
	}

	var req ReportPlaybackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.ReportPlayback(claims.UserID, uint(contentID), *req.WatchTime)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidWatch):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrContentNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrContentLocked):
			util.Forbidden(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
