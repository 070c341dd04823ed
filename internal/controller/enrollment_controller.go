package controller

import (
	"certify_backend/internal/service"
	"certify_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// @Summary 我的报名
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.EnrollmentService.ListEnrollments(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 激活报名
// @Description 支付确认后由管理端调用，重复调用不会改变已激活的报名
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.ActivateEnrollmentRequest true "报名信息"
// @Success 200 {object} util.Response
// @Router /admin/enrollments [post]
func (c *EnrollmentController) ActivateEnrollment(ctx *gin.Context) {
	var req service.ActivateEnrollmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	e, err := c.EnrollmentService.ActivateEnrollment(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, e)
}

type ScheduleExamRequest struct {
	UserID   uint       `json:"userId" binding:"required"`
	ModuleID uint       `json:"moduleId" binding:"required"`
	ExamDate *time.Time `json:"examDate"`
}

// @Summary 设置考试日期
// @Description examDate 为空时取消限制
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ScheduleExamRequest true "考试日期"
// @Success 200 {object} util.Response
// @Router /admin/enrollments/exam-date [put]
func (c *EnrollmentController) ScheduleExam(ctx *gin.Context) {
	var req ScheduleExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	e, err := c.EnrollmentService.ScheduleExam(ctx.Request.Context(), req.UserID, req.ModuleID, req.ExamDate)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, e)
}
