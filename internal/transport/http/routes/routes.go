package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/infra/config"
	"github.com/campusio/intl-office/internal/infra/redis"
	"github.com/campusio/intl-office/internal/infra/security"
	"github.com/campusio/intl-office/internal/transport/http/handlers"
	"github.com/campusio/intl-office/internal/transport/http/middleware"
	"github.com/campusio/intl-office/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Users         *usecase.UserService
	Visas         *usecase.VisaService
	MOUs          *usecase.MOUService
	Translations  *usecase.TranslationService
	Visitors      *usecase.VisitorService
	Documents     *usecase.DocumentService
	Notifications *usecase.NotificationService
	Reports       *usecase.ReportService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *middleware.HTTPMetrics
	Services    ServiceSet
	Tokens      *security.TokenManager
	Pool        *pgxpool.Pool
	Redis       *redis.Client
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	r.Use(deps.HTTPMetrics.Handler())

	healthHandler := handlers.NewHealthHandler(deps.Pool, deps.Redis)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.RequireAuth(deps.Tokens)

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authGroup := api.Group("/auth")
		authHandler.RegisterRoutes(authGroup, buildLoginMiddlewares(deps)...)

		protectedAuth := api.Group("/auth")
		protectedAuth.Use(authMiddleware)
		authHandler.RegisterProtectedRoutes(protectedAuth)

		userGroup := api.Group("/users")
		userGroup.Use(authMiddleware)
		handlers.NewUserHandler(deps.Services.Users).RegisterRoutes(userGroup)

		visaGroup := api.Group("/visa-extensions")
		visaGroup.Use(authMiddleware)
		handlers.NewVisaHandler(deps.Services.Visas).RegisterRoutes(visaGroup)

		mouGroup := api.Group("/mous")
		mouGroup.Use(authMiddleware)
		handlers.NewMOUHandler(deps.Services.MOUs).RegisterRoutes(mouGroup)

		translationGroup := api.Group("/translation-requests")
		translationGroup.Use(authMiddleware)
		handlers.NewTranslationHandler(deps.Services.Translations).RegisterRoutes(translationGroup)

		visitorGroup := api.Group("/visitors")
		visitorGroup.Use(authMiddleware)
		handlers.NewVisitorHandler(deps.Services.Visitors).RegisterRoutes(visitorGroup)

		documentGroup := api.Group("/documents")
		documentGroup.Use(authMiddleware)
		handlers.NewDocumentHandler(deps.Services.Documents).RegisterRoutes(documentGroup)

		notificationGroup := api.Group("/notifications")
		notificationGroup.Use(authMiddleware)
		handlers.NewNotificationHandler(deps.Services.Notifications).RegisterRoutes(notificationGroup)

		reportGroup := api.Group("/reports")
		reportGroup.Use(authMiddleware, middleware.RequirePermission(domain.PermReportGenerate))
		handlers.NewReportHandler(deps.Services.Reports).RegisterRoutes(reportGroup)
	}

	return r
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "auth_login_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
