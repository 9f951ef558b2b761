package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/handler"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// Handlers groups every HTTP handler mounted by New.
type Handlers struct {
	Auth         *handler.AuthHandler
	Sessions     *handler.SessionHandler
	Accounts     *handler.AccountHandler
	Registration *handler.RegistrationHandler
	Students     *handler.StudentHandler
	Semesters    *handler.SemesterHandler
	Curriculum   *handler.CurriculumHandler
	Schedules    *handler.ScheduleHandler
	Enrollments  *handler.EnrollmentHandler
	Notification *handler.NotificationHandler
	Requests     *handler.RequestHandler
	Requirements *handler.RequirementHandler
	Accounting   *handler.AccountingHandler
	Payments     *handler.PaymentHandler
	Photos       *handler.PhotoHandler
	Activity     *handler.ActivityHandler
	Settings     *handler.SettingHandler
	Dashboard    *handler.DashboardHandler
	Files        *handler.FileHandler
	Legacy       *handler.LegacyHandler
	Ops          *handler.OpsHandler
}

// Options carries the engine-wide settings.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Activity       middleware.ActivityRecorder
	Sessions       *middleware.SessionGate
	LegacyTokens   middleware.TokenValidator
}

// New builds the gin engine with the global middleware chain and every route.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(logger.Recovery(opts.Logger))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.ResponseMeta())
	r.Use(middleware.Activity(opts.Activity, opts.APIPrefix+"/auth/"))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	gate := opts.Sessions
	api := r.Group(opts.APIPrefix)
	session := gate.RequireSession()
	admin := gate.AdminOnly()
	student := gate.Session(models.RoleStudent)
	studentOrAdmin := gate.StudentOrAdmin()
	accountingOrAdmin := gate.AccountingOrAdmin()

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/token", h.Auth.Token)
		auth.POST("/logout", session, h.Auth.Logout)
		auth.GET("/me", session, h.Auth.Me)
		auth.POST("/change-password", session, h.Auth.ChangePassword)
	}

	sessions := api.Group("/sessions")
	{
		sessions.GET("", session, h.Sessions.List)
		sessions.DELETE("/expired", admin, h.Sessions.PurgeExpired)
		sessions.DELETE("/:id", session, h.Sessions.Revoke)
	}

	accounts := api.Group("/accounts", admin)
	{
		accounts.GET("", h.Accounts.List)
		accounts.POST("", h.Accounts.Create)
		accounts.GET("/:id", h.Accounts.Get)
		accounts.PUT("/:id", h.Accounts.Update)
		accounts.DELETE("/:id", h.Accounts.Delete)
		accounts.PUT("/:id/password", h.Accounts.ResetPassword)
	}

	registrations := api.Group("/registrations")
	{
		registrations.POST("", h.Registration.Submit)
		registrations.GET("/me", student, h.Registration.Mine)
		registrations.GET("", admin, h.Registration.List)
		registrations.GET("/:id", admin, h.Registration.Get)
		registrations.PUT("/:id", admin, h.Registration.Update)
		registrations.DELETE("/:id", admin, h.Registration.Delete)
		registrations.POST("/:id/approve", admin, h.Registration.Approve)
		registrations.POST("/:id/reject", admin, h.Registration.Reject)
	}

	students := api.Group("/students")
	{
		students.GET("", accountingOrAdmin, h.Students.List)
		students.GET("/:id", session, h.Students.Get)
	}

	semesters := api.Group("/semesters")
	{
		semesters.GET("", session, h.Semesters.List)
		semesters.GET("/active", session, h.Semesters.Active)
		semesters.POST("", admin, h.Semesters.Create)
		semesters.PUT("/:id", admin, h.Semesters.Update)
		semesters.DELETE("/:id", admin, h.Semesters.Delete)
		semesters.POST("/:id/activate", admin, h.Semesters.Activate)
	}

	curriculum := api.Group("/curriculum")
	{
		curriculum.GET("", session, h.Curriculum.List)
		curriculum.GET("/subjects", session, h.Curriculum.ListSubjects)
		curriculum.POST("", admin, h.Curriculum.Create)
		curriculum.DELETE("/:id", admin, h.Curriculum.Delete)
		curriculum.POST("/subjects", admin, h.Curriculum.CreateSubject)
		curriculum.PUT("/subjects/:id", admin, h.Curriculum.UpdateSubject)
		curriculum.DELETE("/subjects/:id", admin, h.Curriculum.DeleteSubject)
	}

	schedules := api.Group("/schedules")
	{
		schedules.GET("", session, h.Schedules.List)
		schedules.GET("/:id", session, h.Schedules.Get)
		schedules.POST("", admin, h.Schedules.Create)
		schedules.POST("/recount", admin, h.Schedules.Recount)
		schedules.PUT("/:id", admin, h.Schedules.Update)
		schedules.DELETE("/:id", admin, h.Schedules.Delete)
	}

	enrollments := api.Group("/enrollments")
	{
		enrollments.POST("", studentOrAdmin, h.Enrollments.Create)
		enrollments.GET("", studentOrAdmin, h.Enrollments.List)
		enrollments.DELETE("/:id", studentOrAdmin, h.Enrollments.Delete)
		enrollments.PUT("/:id/status", admin, h.Enrollments.UpdateStatus)
		enrollments.PUT("/:id/grade", admin, h.Enrollments.UpdateGrade)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", session, h.Notification.List)
		notifications.GET("/unread-count", session, h.Notification.UnreadCount)
		notifications.PUT("/read-all", session, h.Notification.MarkAllRead)
		notifications.PUT("/:id/read", session, h.Notification.MarkRead)
		notifications.DELETE("/:id", session, h.Notification.Delete)
		notifications.DELETE("", session, h.Notification.DeleteAll)
		notifications.POST("/broadcast", admin, h.Notification.Broadcast)
	}

	requests := api.Group("/requests")
	{
		requests.POST("", studentOrAdmin, h.Requests.Create)
		requests.GET("", studentOrAdmin, h.Requests.List)
		requests.GET("/:id", studentOrAdmin, h.Requests.Get)
		requests.DELETE("/:id", studentOrAdmin, h.Requests.Delete)
		requests.GET("/:id/documents/:index/link", studentOrAdmin, h.Requests.DocumentLink)
		requests.PUT("/:id/status", admin, h.Requests.UpdateStatus)
	}

	requirements := api.Group("/requirements")
	{
		requirements.GET("", studentOrAdmin, h.Requirements.List)
		requirements.POST("/:id/upload", studentOrAdmin, h.Requirements.Upload)
		requirements.POST("", admin, h.Requirements.Create)
		requirements.PUT("/:id/verify", admin, h.Requirements.Verify)
		requirements.DELETE("/:id", admin, h.Requirements.Delete)
	}

	accounting := api.Group("/accounting")
	{
		accounting.POST("/assessments", accountingOrAdmin, h.Accounting.CreateAssessment)
		accounting.GET("/assessments", accountingOrAdmin, h.Accounting.ListAssessments)
		accounting.GET("/summary", accountingOrAdmin, h.Accounting.Summary)
		accounting.GET("/students/:id/ledger", session, h.Accounting.Ledger)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", session, h.Payments.Create)
		payments.GET("", session, h.Payments.List)
		payments.GET("/export", accountingOrAdmin, h.Payments.Export)
		payments.GET("/:id", session, h.Payments.Get)
		payments.GET("/:id/receipt", session, h.Payments.Receipt)
		payments.PUT("/:id/verify", accountingOrAdmin, h.Payments.Verify)
	}

	photos := api.Group("/photos", session)
	{
		photos.POST("", h.Photos.Upload)
		photos.DELETE("", h.Photos.Delete)
		photos.GET("/:userId", h.Photos.Get)
	}

	api.GET("/activity-logs", admin, h.Activity.List)

	settings := api.Group("/settings")
	{
		settings.GET("", session, h.Settings.List)
		settings.GET("/:key", session, h.Settings.Get)
		settings.PUT("/:key", admin, h.Settings.Update)
	}

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/admin", admin, h.Dashboard.Admin)
		dashboard.GET("/student", student, h.Dashboard.Student)
		dashboard.GET("/accounting", accountingOrAdmin, h.Dashboard.Accounting)
	}

	api.GET("/files/download", session, h.Files.Download)

	legacy := api.Group("/legacy", middleware.LegacyJWT(opts.LegacyTokens))
	{
		legacy.GET("/me", h.Legacy.Me)
		legacy.GET("/requests", h.Legacy.Requests)
		legacy.GET("/notifications", h.Legacy.Notifications)
	}

	return r
}
