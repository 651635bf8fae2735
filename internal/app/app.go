package app

import (
	"context"
	"edu_assessment_backend/internal/config"
	"edu_assessment_backend/internal/controller"
	"edu_assessment_backend/internal/events"
	"edu_assessment_backend/internal/repository"
	"edu_assessment_backend/internal/service"
	"edu_assessment_backend/pkg/database"
	"edu_assessment_backend/pkg/logger"
	"edu_assessment_backend/pkg/monitoring"
	"edu_assessment_backend/pkg/security"
	"edu_assessment_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	reaperStop      chan struct{}
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	bank       *repository.QuestionBankRepository
	assessment *repository.AssessmentRepository
	attempt    *repository.AttemptRepository
	mastery    *repository.MasteryRepository
}

type services struct {
	bank       *service.QuestionBankService
	assessment *service.AssessmentService
	renderer   *service.QuestionRenderer
	mastery    *service.MasteryService
	attempt    *service.AttemptStateMachine
}

type controllers struct {
	bank       *controller.QuestionBankController
	assessment *controller.AssessmentController
	attempt    *controller.AttemptController
	mastery    *controller.MasteryController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig swaps in a reloaded config and notifies registered callbacks.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		bank:       repository.NewQuestionBankRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		mastery:    repository.NewMasteryRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	emitter := events.NewRedisEmitter(rdb, cfg.Attempt.EventChannel)

	s.bank = service.NewQuestionBankService(repos.bank)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.bank)
	s.renderer = service.NewQuestionRenderer()
	s.mastery = service.NewMasteryService(repos.mastery, emitter)
	s.attempt = service.NewAttemptStateMachine(repos.attempt, repos.assessment, repos.bank, s.renderer, s.mastery, emitter)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		bank:       controller.NewQuestionBankController(s.bank),
		assessment: controller.NewAssessmentController(s.assessment),
		attempt:    controller.NewAttemptController(s.attempt),
		mastery:    controller.NewMasteryController(s.mastery),
		health:     controller.NewHealthController(),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	// Reads through a.Config so a config reload changes the limits for new
	// visitors without a restart.
	router.Use(security.RateLimiterFunc(func() (int, time.Duration) {
		maxRequests := a.Config.RateLimit.MaxRequests
		if maxRequests <= 0 {
			maxRequests = 1000
		}
		window := time.Duration(a.Config.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		return maxRequests, window
	}))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the attempt reaper: in-progress attempts whose
// time limit has elapsed are closed as timed_out on each tick.
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	a.reaperStop = make(chan struct{})
	interval := time.Duration(cfg.Attempt.ReaperIntervalSeconds) * time.Second

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				reaped, err := s.attempt.TimeoutExpired(context.Background())
				if err != nil {
					logger.Log.Error("attempt reaper error", zap.Error(err))
					continue
				}
				if reaped > 0 {
					logger.Log.Info("attempt reaper closed expired attempts", zap.Int("count", reaped))
				}
			case <-a.reaperStop:
				return
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("assessment-engine", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.reaperStop != nil {
		close(a.reaperStop)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
