package main

import (
	"alcyxob/coaching-app/internal/api"
	"alcyxob/coaching-app/internal/cache"
	"alcyxob/coaching-app/internal/config"
	"alcyxob/coaching-app/internal/events"
	"alcyxob/coaching-app/internal/logging"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/repository/mongo"
	"alcyxob/coaching-app/internal/service"
	"alcyxob/coaching-app/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// @title Coaching API
// @version 1.0
// @description API for composing training sessions, weekly plans, nutrition plans and client questionnaires.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logger, err := logging.New(logging.Params{
		Production: cfg.Log.IsProduction(),
		Level:      cfg.Log.Level,
		LogFile:    cfg.Log.File,
	})
	if err != nil {
		log.Fatalf("FATAL: Could not create logger: %v", err)
	}
	defer logging.Sync(logger)
	logger.Info("starting coaching server", zap.String("env", cfg.Log.Env))

	// --- Metrics ---
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("coaching", "server", promRegistry)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", zap.String("db", cfg.Database.Name))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB, logger)
	}()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("failed to close redis client", zap.Error(err))
		}
	}()
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// the dish cache falls back to the catalog on every redis failure
		logger.Warn("redis is not reachable, dish cache will be bypassed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	pingCancel()

	// --- Events ---
	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.Queue.Enabled {
		queueClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Queue.RedisDB,
		})
		defer func() {
			if err := queueClient.Close(); err != nil {
				logger.Error("failed to close queue client", zap.Error(err))
			}
		}()
		publisher = events.NewAsynqPublisher(queueClient, cfg.Queue.Name, metricsManager, logger)
		logger.Info("publishing domain events to queue", zap.String("queue", cfg.Queue.Name))
	}

	// --- Initialize Storage ---
	var media storage.MediaStorage
	if cfg.S3.BucketName != "" {
		media, err = storage.NewS3Storage(context.Background(), cfg.S3, logger)
		if err != nil {
			logger.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		logger.Warn("s3.bucket_name is empty, media links are disabled")
	}

	// --- Initialize Repositories ---
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	weeklyPlanRepo := mongo.NewMongoWeeklyPlanRepository(appDB)
	nutritionPlanRepo := mongo.NewMongoNutritionPlanRepository(appDB)
	formResponseRepo := mongo.NewMongoFormResponseRepository(appDB)
	formTemplateRepo := mongo.NewMongoFormTemplateRepository(appDB)
	exerciseCatalog := mongo.NewMongoExerciseCatalog(appDB)
	dishCatalog := cache.NewDishCache(rdb, mongo.NewMongoDishCatalog(appDB), cfg.Redis.DishCacheTTL, metricsManager, logger)

	// --- Initialize Services ---
	infra := service.Infra{
		Logger:    logger,
		Metrics:   metricsManager,
		Publisher: publisher,
	}
	services := api.Services{
		Sessions:    service.NewSessionService(infra, sessionRepo, weeklyPlanRepo, exerciseCatalog, media),
		WeeklyPlans: service.NewWeeklyPlanService(infra, weeklyPlanRepo, sessionRepo, formResponseRepo, formTemplateRepo),
		Nutrition:   service.NewNutritionService(infra, nutritionPlanRepo, dishCatalog, media),
		Forms:       service.NewFormService(infra, formResponseRepo, formTemplateRepo, weeklyPlanRepo),
	}

	// --- Initialize Gin Engine ---
	if cfg.Log.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.SetupMiddleware(router, logger, metricsManager)
	api.SetupRoutes(router, cfg.JWT.Secret, services, promRegistry, logger)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
