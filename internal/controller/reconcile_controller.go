package controller

import (
	"certify_backend/internal/service"
	"certify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReconcileController struct {
	ReconcileService *service.ReconcileService
}

func NewReconcileController(reconcileService *service.ReconcileService) *ReconcileController {
	return &ReconcileController{ReconcileService: reconcileService}
}

// @Summary 手动补偿
// @Description 重新执行回溯窗口内已通过测试的后续处理
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/reconcile [post]
func (c *ReconcileController) Run(ctx *gin.Context) {
	n, err := c.ReconcileService.Run(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"applied": n})
}
