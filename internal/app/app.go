package app

import (
	"certify_backend/internal/config"
	"certify_backend/internal/controller"
	"certify_backend/internal/repository"
	"certify_backend/internal/service"
	"certify_backend/internal/util"
	"certify_backend/pkg/cache"
	"certify_backend/pkg/configwatcher"
	"certify_backend/pkg/database"
	"certify_backend/pkg/logger"
	"certify_backend/pkg/monitoring"
	"certify_backend/pkg/security"
	"certify_backend/pkg/tracing"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFile is watched for runtime changes.
const ConfigFile = "configs/config.yaml"

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services

	tracer          *sdktrace.TracerProvider
	scheduler       *cron.Cron
	configCallbacks []configwatcher.Reloader
}

type repositories struct {
	curriculum *repository.CurriculumRepository
	enrollment *repository.EnrollmentRepository
	completion *repository.ContentCompletionRepository
	test       *repository.TestRepository
	testResult *repository.TestResultRepository
	profile    *repository.ProfileRepository
}

type services struct {
	storage     *service.StorageService
	progress    *service.ProgressService
	certificate *service.CertificateService
	submission  *service.SubmissionService
	enrollment  *service.EnrollmentService
	curriculum  *service.CurriculumService
	reconcile   *service.ReconcileService
}

type controllers struct {
	enrollment  *controller.EnrollmentController
	progress    *controller.ProgressController
	test        *controller.TestController
	certificate *controller.CertificateController
	reconcile   *controller.ReconcileController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback configwatcher.Reloader) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		curriculum: repository.NewCurriculumRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		completion: repository.NewContentCompletionRepository(db),
		test:       repository.NewTestRepository(db),
		testResult: repository.NewTestResultRepository(db),
		profile:    repository.NewProfileRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)

	s.progress = service.NewProgressService(repos.curriculum, repos.enrollment, repos.completion)
	if rdb != nil {
		s.progress.Cache = cache.NewStructureCache(rdb, time.Duration(cfg.Redis.StructureTTL)*time.Second)
	}

	s.certificate = service.NewCertificateService(
		repos.curriculum,
		repos.enrollment,
		repos.profile,
		repos.test,
		repos.testResult,
		s.storage,
		cfg.Certificate.MinExamScore,
	)

	s.submission = service.NewSubmissionService(
		repos.curriculum,
		repos.test,
		repos.testResult,
		repos.enrollment,
		s.progress,
		s.certificate,
	)

	s.enrollment = service.NewEnrollmentService(repos.curriculum, repos.enrollment)
	s.curriculum = service.NewCurriculumService(
		repos.curriculum,
		repos.test,
		repos.testResult,
		repos.completion,
		repos.enrollment,
		s.progress,
	)
	s.reconcile = service.NewReconcileService(repos.testResult, s.submission, cfg.Reconcile.Lookback)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		enrollment:  controller.NewEnrollmentController(s.enrollment),
		progress:    controller.NewProgressController(s.progress, s.curriculum),
		test:        controller.NewTestController(s.submission),
		certificate: controller.NewCertificateController(s.certificate),
		reconcile:   controller.NewReconcileController(s.reconcile),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	// 健康检查、指标采集和文档不计入限流
	router.Use(security.RateLimiter(
		cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute,
		"/api/health", "/metrics", "/swagger/",
	))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires repositories, services, controllers and routes over an open
// database. rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.services.certificate.SetMinExamScore(newCfg.Certificate.MinExamScore)
		logger.Log.Info("certificate score floor updated", zap.Int("minExamScore", newCfg.Certificate.MinExamScore))
	})

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// release 模式下默认不自动迁移，需显式 -migrate
	migrate := cfg.ForceMigrate || cfg.Server.Mode != "release"
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存只是加速，连接失败时退回直接查库
		logger.Log.Warn("Redis unavailable, structure cache disabled", zap.Error(err))
		rdb = nil
	}

	// 监控初始化
	monitoring.Init()

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.startBackgroundTasks(cfg)

	return app
}

func (a *App) startBackgroundTasks(cfg *config.Config) {
	if !cfg.Reconcile.Enabled {
		return
	}
	c, err := a.services.reconcile.Schedule(cfg.Reconcile.Schedule)
	if err != nil {
		logger.Log.Error("Failed to schedule reconciler", zap.String("schedule", cfg.Reconcile.Schedule), zap.Error(err))
		return
	}
	a.scheduler = c
	logger.Log.Info("Reconciler scheduled", zap.String("schedule", cfg.Reconcile.Schedule))
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if _, err := os.Stat(ConfigFile); err == nil {
		go func() {
			if err := configwatcher.Watch(watchCtx, filepath.Clean(ConfigFile), time.Second, a.configCallbacks...); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.scheduler != nil {
		select {
		case <-a.scheduler.Stop().Done():
		case <-ctx.Done():
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
