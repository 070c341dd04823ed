package controller

import (
	"certify_backend/internal/service"
	"certify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	SubmissionService *service.SubmissionService
}

func NewTestController(submissionService *service.SubmissionService) *TestController {
	return &TestController{SubmissionService: submissionService}
}

// @Summary 提交测试
// @Description 评分并保存为该用户在该测试上的唯一结果，重复提交覆盖上一次
// @Tags 测试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测试ID"
// @Param request body service.SubmitRequest true "答案"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 403 {object} util.Response
// @Router /tests/{id}/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	req.UserID = user.UserID
	req.TestID = id

	result, err := c.SubmissionService.SubmitTest(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
