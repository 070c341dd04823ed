package controller

import (
	"certify_backend/internal/service"
	"certify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService   *service.ProgressService
	CurriculumService *service.CurriculumService
}

func NewProgressController(progressService *service.ProgressService, curriculumService *service.CurriculumService) *ProgressController {
	return &ProgressController{ProgressService: progressService, CurriculumService: curriculumService}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}

// @Summary 标记内容完成
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "内容ID"
// @Success 200 {object} util.Response
// @Router /contents/{id}/complete [post]
func (c *ProgressController) MarkContentComplete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	state, err := c.ProgressService.MarkContentComplete(ctx.Request.Context(), user.UserID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary 标记子主题完成
// @Description 子主题下全部已发布内容完成后才会成功
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "子主题ID"
// @Success 200 {object} util.Response
// @Router /subtopics/{id}/complete [post]
func (c *ProgressController) MarkSubTopicComplete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	state, err := c.ProgressService.MarkSubTopicComplete(ctx.Request.Context(), user.UserID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary 模块学习进度
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /modules/{id}/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	p, err := c.ProgressService.GetEnrollmentProgress(ctx.Request.Context(), user.UserID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 模块大纲
// @Description 返回模块结构、完成情况以及每个测试的锁定状态
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /modules/{id}/outline [get]
func (c *ProgressController) GetOutline(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	outline, err := c.CurriculumService.GetModuleOutline(ctx.Request.Context(), user.UserID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, outline)
}

// @Summary 重新计算进度
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "模块ID"
// @Param userId query int true "用户ID"
// @Success 200 {object} util.Response
// @Router /admin/modules/{id}/recompute [post]
func (c *ProgressController) Recompute(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	userID := util.MustParseUint(ctx.Query("userId"))
	if userID == 0 {
		util.BadRequest(ctx, "invalid userId")
		return
	}

	p, err := c.ProgressService.RecomputeProgress(ctx.Request.Context(), userID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"moduleId": id, "userId": userID, "progressPercentage": p})
}
