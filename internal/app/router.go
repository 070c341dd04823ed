package app

import (
	"certify_backend/docs"
	"certify_backend/internal/config"
	"certify_backend/internal/middleware"
	"certify_backend/internal/model"
	"certify_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/enrollments", c.enrollment.ActivateEnrollment)
		admin.PUT("/enrollments/exam-date", c.enrollment.ScheduleExam)
		admin.POST("/modules/:id/recompute", c.progress.Recompute)
		admin.POST("/reconcile", c.reconcile.Run)
	}
}

func (a *App) registerStudentRoutes(r *gin.RouterGroup, c *controllers) {
	r.GET("/enrollments", c.enrollment.ListEnrollments)

	modules := r.Group("/modules")
	{
		modules.GET("/:id/progress", c.progress.GetProgress)
		modules.GET("/:id/outline", c.progress.GetOutline)
	}

	r.POST("/contents/:id/complete", c.progress.MarkContentComplete)
	r.POST("/subtopics/:id/complete", c.progress.MarkSubTopicComplete)
	r.POST("/tests/:id/submit", c.test.SubmitTest)

	certificates := r.Group("/certificates")
	{
		certificates.GET("/status", c.certificate.GetStatus)
		certificates.POST("/issue", c.certificate.Issue)
	}
}
