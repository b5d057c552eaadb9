package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/examhub/config"
	"github.com/lshigami/examhub/database"
	"github.com/lshigami/examhub/internal/cache"
	"github.com/lshigami/examhub/internal/controller"
	adminctrl "github.com/lshigami/examhub/internal/controller/admin"
	tutorctrl "github.com/lshigami/examhub/internal/controller/tutor"
	userctrl "github.com/lshigami/examhub/internal/controller/user"
	"github.com/lshigami/examhub/internal/logger"
	"github.com/lshigami/examhub/internal/middleware"
	"github.com/lshigami/examhub/internal/repository"
	"github.com/lshigami/examhub/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title ExamHub Assessment API
// @version 1.0
// @description Attempts, grading and tutor review for QUIZ, SIMULADO and PROVA_ABERTA assessments.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := fx.New(
		// Core
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			cache.NewRedisClient,
			func(client *redis.Client, cfg *config.Config) *cache.Cache {
				return cache.New(client, cfg.Redis.CacheTTL)
			},
			middleware.NewAuth,
			NewGinEngine,
		),

		// Repositories
		fx.Provide(
			repository.NewAccountRepository,
			func(db *gorm.DB, c *cache.Cache) repository.AssessmentRepository {
				return repository.NewCachedAssessmentRepository(repository.NewAssessmentRepository(db), c)
			},
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewAttemptAnswerRepository,
		),

		// Services
		fx.Provide(
			service.NewGeminiClient,
			service.NewAttemptService,
			service.NewReviewService,
			service.NewResultService,
			service.NewReviewAssistantService,
			service.NewAdminAssessmentService,
			service.NewAssessmentService,
		),

		// Controllers
		fx.Provide(
			userctrl.NewAttemptController,
			tutorctrl.NewReviewController,
			adminctrl.NewAdminAssessmentController,
		),

		fx.Invoke(InitLogger),
		fx.Invoke(database.Migrate),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

func InitLogger(cfg *config.Config) {
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Serves the OpenAPI document generated by `swag init -g cmd/main.go`.
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", controller.Health)

	return r
}

// RegisterRoutesAndStartServer mounts the authenticated API and ties the HTTP server,
// Redis client and Gemini client to the application lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	auth *middleware.Auth,
	redisClient *redis.Client,
	llm service.LLMClient,
	attemptCtrl *userctrl.AttemptController,
	reviewCtrl *tutorctrl.ReviewController,
	adminCtrl *adminctrl.AdminAssessmentController,
) {
	api := router.Group("/api/v1", auth.Handler())
	attemptCtrl.RegisterRoutes(api)
	reviewCtrl.RegisterRoutes(api)
	adminCtrl.RegisterRoutes(api)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("ExamHub API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			err := server.Shutdown(shutdownCtx)
			if redisClient != nil {
				if cerr := redisClient.Close(); cerr != nil {
					log.Error().Err(cerr).Msg("Failed to close Redis client")
				}
			}
			if cerr := llm.Close(); cerr != nil {
				log.Error().Err(cerr).Msg("Failed to close Gemini client")
			}
			return err
		},
	})
}
