package controller

import (
	"elearning_backend/internal/service"
	"elearning_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	LearningService *service.LearningService
}

func NewLearningController(learningService *service.LearningService) *LearningController {
	return &LearningController{LearningService: learningService}
}

// GetModules godoc
// @Summary 课程总览
// @Description 返回完整课程树及每个节点的解锁/完成状态。匿名访问返回全锁定的树，不带统计
// @Tags 学习
// @Produce  json
// @Success 200 {object} util.Response{data=object{modules=[]service.ModuleView,stats=service.UserStats}}
// @Failure 401 {object} util.Response "令牌对应的用户已不存在"
// @Failure 403 {object} util.Response "邮箱未验证"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/modules [get]
func (c *LearningController) GetModules(ctx *gin.Context) {
	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	views, stats, err := c.LearningService.GetModules(ctx.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrEmailNotVerified):
			util.Forbidden(ctx, err.Error())
		case errors.Is(err, util.ErrUserNotFound):
			util.Unauthorized(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	payload := gin.H{"modules": views}
	if stats != nil {
		payload["stats"] = stats
	}
	util.Success(ctx, payload)
}

// GetContent godoc
// @Summary 内容详情
// @Description 返回内容元数据、播放地址与个人进度。内容未解锁时拒绝
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "内容ID"
// @Success 200 {object} util.Response{data=service.ContentDetail}
// @Failure 403 {object} util.Response "前置内容未完成"
// @Failure 404 {object} util.Response "内容不存在"
// @Router /api/contents/{id} [get]
func (c *LearningController) GetContent(ctx *gin.Context) {
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

	detail, err := c.LearningService.GetContent(ctx.Request.Context(), claims.UserID, uint(contentID))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrContentNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrContentLocked):
			util.Forbidden(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}

// AdminContents godoc
// @Summary 管理端内容列表
// @Description 全量内容（含停用），带所属章节/模块标题与学习人数
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]repository.AdminContentRow}
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/admin/contents [get]
func (c *LearningController) AdminContents(ctx *gin.Context) {
	rows, err := c.LearningService.AdminContents()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"contents": rows, "total": len(rows)})
}
