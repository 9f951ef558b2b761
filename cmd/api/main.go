package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-admin-api/api/swagger"
	"github.com/noah-isme/school-admin-api/internal/handler"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/repository"
	"github.com/noah-isme/school-admin-api/internal/router"
	"github.com/noah-isme/school-admin-api/internal/service"
	"github.com/noah-isme/school-admin-api/pkg/cache"
	"github.com/noah-isme/school-admin-api/pkg/config"
	"github.com/noah-isme/school-admin-api/pkg/database"
	"github.com/noah-isme/school-admin-api/pkg/export"
	"github.com/noah-isme/school-admin-api/pkg/jobs"
	"github.com/noah-isme/school-admin-api/pkg/logger"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

// @title School Admin API
// @version 1.0.0
// @description Student records, enrollment, document requests and payments for a school administration office
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logr); err != nil {
		logr.Sugar().Fatalw("server stopped", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Cache.Enabled)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Cache.DashboardTTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	files, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.MaxFileSizeBytes)
	if err != nil {
		return fmt.Errorf("init uploads: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	queue := jobs.NewQueue("background", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.Retries,
		Logger:     logr,
	})

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, sessionRepo, activityRepo, cacheSvc, validate, logr, service.AuthConfig{
		SessionTTL:      cfg.Session.TTL,
		SessionCacheTTL: cfg.Cache.SessionTTL,
		JWTSecret:       cfg.JWT.Secret,
		JWTExpiry:       cfg.JWT.Expiration,
		Issuer:          "school-admin-api",
	})
	accountSvc := service.NewAccountService(userRepo, cacheSvc, validate, logr)
	settingSvc := service.NewSettingService(settingRepo, cacheSvc, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(repository.NewScheduleRepository(db), queue, metrics, validate, logr)
	notificationSvc := service.NewNotificationService(repository.NewNotificationRepository(db), queue, metrics, validate, logr)
	fileSvc := service.NewFileService(signer, files, cfg.APIPrefix+"/files/download", logr)
	requestSvc := service.NewRequestService(repository.NewRequestRepository(db), files, fileSvc, cfg.Uploads.AllowedMIMEs, metrics, validate, logr)
	paymentSvc := service.NewPaymentService(service.PaymentServiceParams{
		Repo:      repository.NewPaymentRepository(db),
		Files:     files,
		Settings:  settingSvc,
		CSV:       export.NewCSVExporter(),
		PDF:       export.NewPDFExporter(),
		Cache:     cacheSvc,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
	})

	queue.Handle(service.JobRecountEnrollment, scheduleSvc.HandleRecount)
	queue.Handle(service.JobBroadcastNotification, notificationSvc.HandleBroadcast)
	queue.Start(ctx)
	defer queue.Stop()

	if cfg.Seed.DummyAccounts {
		created, err := accountSvc.SeedDummyAccounts(ctx, cfg.Seed.DefaultPassword)
		if err != nil {
			return fmt.Errorf("seed accounts: %w", err)
		}
		logr.Info("dummy accounts seeded", zap.Int("created", created))
	}

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Env == config.EnvProduction}),
		Sessions:     handler.NewSessionHandler(service.NewSessionService(sessionRepo, cacheSvc, logr)),
		Accounts:     handler.NewAccountHandler(accountSvc),
		Registration: handler.NewRegistrationHandler(service.NewRegistrationService(repository.NewRegistrationRepository(db), userRepo, settingSvc, cfg.Requirements.Defaults, validate, logr)),
		Students:     handler.NewStudentHandler(service.NewStudentService(repository.NewStudentRepository(db), validate, logr)),
		Semesters:    handler.NewSemesterHandler(service.NewSemesterService(repository.NewSemesterRepository(db), cacheSvc, validate, logr)),
		Curriculum:   handler.NewCurriculumHandler(service.NewCurriculumService(repository.NewCurriculumRepository(db), validate, logr)),
		Schedules:    handler.NewScheduleHandler(scheduleSvc),
		Enrollments:  handler.NewEnrollmentHandler(service.NewEnrollmentService(repository.NewEnrollmentRepository(db), settingSvc, cacheSvc, validate, logr)),
		Notification: handler.NewNotificationHandler(notificationSvc),
		Requests:     handler.NewRequestHandler(requestSvc),
		Requirements: handler.NewRequirementHandler(service.NewRequirementService(repository.NewRequirementRepository(db), files, cfg.Uploads.AllowedMIMEs, metrics, validate, logr)),
		Accounting:   handler.NewAccountingHandler(service.NewAccountingService(repository.NewAccountingRepository(db), cacheSvc, validate, logr)),
		Payments:     handler.NewPaymentHandler(paymentSvc),
		Photos:       handler.NewPhotoHandler(service.NewPhotoService(userRepo, files, metrics, logr)),
		Activity:     handler.NewActivityHandler(activitySvc),
		Settings:     handler.NewSettingHandler(settingSvc),
		Dashboard:    handler.NewDashboardHandler(service.NewDashboardService(repository.NewDashboardRepository(db), settingSvc, cacheSvc, metrics, cfg.Cache.DashboardTTL, logr)),
		Files:        handler.NewFileHandler(fileSvc),
		Legacy:       handler.NewLegacyHandler(authSvc, requestSvc, notificationSvc),
		Ops:          handler.NewOpsHandler(db, metrics),
	}

	engine := router.New(router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Activity:       activitySvc,
		Sessions:       middleware.NewSessionGate(authSvc, cfg.Session.CookieName),
		LegacyTokens:   authSvc,
	}, handlers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logr.Info("server stopped")
	return nil
}
