package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/infra/config"
	"github.com/campusio/intl-office/internal/infra/database"
	kafkainfra "github.com/campusio/intl-office/internal/infra/kafka"
	"github.com/campusio/intl-office/internal/infra/logger"
	redisinfra "github.com/campusio/intl-office/internal/infra/redis"
	"github.com/campusio/intl-office/internal/infra/security"
	"github.com/campusio/intl-office/internal/infra/smtp"
	"github.com/campusio/intl-office/internal/infra/storage"
	"github.com/campusio/intl-office/internal/infra/telemetry"
	"github.com/campusio/intl-office/internal/report"
	postgresrepo "github.com/campusio/intl-office/internal/repository/postgres"
	redisrepo "github.com/campusio/intl-office/internal/repository/redis"
	"github.com/campusio/intl-office/internal/transport/http/middleware"
	"github.com/campusio/intl-office/internal/transport/http/routes"
	"github.com/campusio/intl-office/internal/usecase"
)

// Application owns the wired service graph and the HTTP server lifecycle.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

// New assembles the application from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if err := security.ConfigureArgon2(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	tokens, err := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	files, err := storage.NewDiskStore(cfg.Uploads.Dir)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init upload store: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var events port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			events = kafkainfra.NewStubPublisher(log)
		} else {
			events = kafkainfra.NewEventPublisher(producer, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		events = kafkainfra.NewStubPublisher(log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "intl:rate-limit",
		TTL:       rateLimitWindow * 2,
	})

	mailer := smtp.NewMailer(cfg.SMTP)
	notifier := usecase.NewNotifier(repos.Notifications, repos.Users, mailer)

	authService := usecase.NewAuthService(repos.Users, tokens, rateLimitStore, cfg.RateLimit)
	userService := usecase.NewUserService(repos.Users, security.DefaultPasswordValidator(), events)
	visaService := usecase.NewVisaService(repos.Visas, repos.Documents, events, notifier, metrics)
	mouService := usecase.NewMOUService(repos.MOUs, events, notifier, metrics)
	translationService := usecase.NewTranslationService(repos.Translations, events, notifier, metrics)
	visitorService := usecase.NewVisitorService(repos.Visitors, events, notifier, metrics)
	documentService := usecase.NewDocumentService(repos.Documents, files, repos.Visas, repos.MOUs, repos.Translations, repos.Visitors, cfg.Uploads)
	notificationService := usecase.NewNotificationService(repos.Notifications)
	reportService := usecase.NewReportService(repos.Visas, repos.MOUs, report.NewExcelGenerator(), report.NewPDFGenerator(), metrics)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Namespace: cfg.Telemetry.Namespace,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: middleware.NewRateLimiter(rateLimitStore, log),
		HTTPMetrics: httpMetrics,
		Tokens:      tokens,
		Pool:        pool,
		Redis:       redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Users:         userService,
			Visas:         visaService,
			MOUs:          mouService,
			Translations:  translationService,
			Visitors:      visitorService,
			Documents:     documentService,
			Notifications: notificationService,
			Reports:       reportService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting international office API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
