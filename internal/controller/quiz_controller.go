package controller

import (
	"elearning_backend/internal/model"
	"elearning_backend/internal/service"
	"elearning_backend/internal/util"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// GetQuiz godoc
// @Summary 获取测验题目
// @Description 下发题目（不含正确答案）。章节内容未完成时拒绝；已通过时拒绝并附带历史成绩
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizDetail}
// @Failure 403 {object} util.Response "章节内容未完成或已通过"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	detail, summary, err := c.QuizService.GetQuiz(claims.UserID, uint(quizID))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrQuizLocked), errors.Is(err, util.ErrEmailNotVerified):
			util.Forbidden(ctx, err.Error())
		case errors.Is(err, util.ErrQuizAlreadyPassed):
			// 附带历史成绩，前端据此渲染成绩页而非答题页
			util.ErrorWithData(ctx, http.StatusForbidden, err.Error(), summary)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}

// SubmitQuizRequest 测验提交
type SubmitQuizRequest struct {
	Answers map[uint]model.Answer `json:"answers" binding:"required"`
}

// SubmitQuiz godoc
// @Summary 提交测验答案
// @Description 服务端判分。通过后成绩为终态，未通过可重考
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Param   body body SubmitQuizRequest true "题目ID到答案的映射"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response "答案缺失或格式错误"
// @Failure 403 {object} util.Response "测验未解锁或已通过"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitQuiz(claims.UserID, uint(quizID), req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidAnswers):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrQuizLocked), errors.Is(err, util.ErrQuizAlreadyPassed),
			errors.Is(err, util.ErrEmailNotVerified):
			util.Forbidden(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
