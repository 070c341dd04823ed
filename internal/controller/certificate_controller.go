package controller

import (
	"certify_backend/internal/service"
	"certify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// moduleScope reads ?moduleId=; without it the request targets the aptitude
// certificate on the user profile.
func moduleScope(ctx *gin.Context) (*uint, bool) {
	moduleID, err := util.OptionalUint(ctx.Query("moduleId"))
	if err != nil {
		util.BadRequest(ctx, "invalid moduleId")
		return nil, false
	}
	return moduleID, true
}

// @Summary 证书状态
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Param moduleId query int false "模块ID，不传则查询能力测试证书"
// @Success 200 {object} util.Response{data=service.CertificateStatus}
// @Router /certificates/status [get]
func (c *CertificateController) GetStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	moduleID, ok := moduleScope(ctx)
	if !ok {
		return
	}

	st, err := c.CertificateService.GetCertificateStatus(ctx.Request.Context(), user.UserID, moduleID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, st)
}

// @Summary 领取证书
// @Description 通过考试48小时后可领取，重复调用返回同一份证书
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Param moduleId query int false "模块ID，不传则领取能力测试证书"
// @Success 200 {object} util.Response{data=service.CertificateStatus}
// @Failure 403 {object} util.Response
// @Router /certificates/issue [post]
func (c *CertificateController) Issue(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	moduleID, ok := moduleScope(ctx)
	if !ok {
		return
	}

	st, err := c.CertificateService.IssueCertificate(ctx.Request.Context(), user.UserID, moduleID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, st)
}
