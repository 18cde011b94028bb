package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campusconnect/campus-connect-api/internal/app"
	"github.com/campusconnect/campus-connect-api/internal/config"
	"github.com/campusconnect/campus-connect-api/internal/database"
	"github.com/campusconnect/campus-connect-api/internal/health"
	"github.com/campusconnect/campus-connect-api/internal/http/handler"
	"github.com/campusconnect/campus-connect-api/internal/http/middleware"
	"github.com/campusconnect/campus-connect-api/internal/http/router"
	"github.com/campusconnect/campus-connect-api/internal/notification"
	"github.com/campusconnect/campus-connect-api/internal/observability"
	"github.com/campusconnect/campus-connect-api/internal/repository"
	"github.com/campusconnect/campus-connect-api/internal/security"
	"github.com/campusconnect/campus-connect-api/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewAccountRepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	security.NewDefaultPasswordHasher,
	security.NewRandomCodeGenerator,
	wire.Bind(new(service.PasswordHasher), new(*security.PasswordHasher)),
	wire.Bind(new(service.CodeGenerator), new(*security.RandomCodeGenerator)),
	wire.Bind(new(service.TokenIssuer), new(*security.JWTManager)),
)

var NotificationSet = wire.NewSet(
	provideRenderer,
	provideMailer,
	provideDispatcher,
	wire.Bind(new(service.NotificationDispatcher), new(*notification.Dispatcher)),
)

var ServiceSet = wire.NewSet(
	service.NewAuthService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	provideAuthAbuseGuard,
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewAccountHandler,
	provideGlobalRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret, cfg.JWTAccessTTL)
}

func provideRenderer(cfg *config.Config) (*notification.Renderer, error) {
	return notification.NewRenderer(notification.RendererConfig{
		ResetBaseURL:    cfg.AuthPasswordResetBaseURL,
		VerificationTTL: cfg.AuthVerificationCodeTTL,
		ResetTTL:        cfg.AuthPasswordResetTokenTTL,
	})
}

func provideMailer(cfg *config.Config, logger *slog.Logger) notification.Mailer {
	if cfg.MailDriver == "smtp" {
		return notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}
	return notification.NewLogMailer(logger, cfg.LocalLike())
}

func provideDispatcher(cfg *config.Config, renderer *notification.Renderer, mailer notification.Mailer, logger *slog.Logger) *notification.Dispatcher {
	return notification.NewDispatcher(renderer, mailer, logger, notification.DispatcherOptions{
		QueueSize:  cfg.NotifyQueueSize,
		Workers:    cfg.NotifyWorkers,
		MaxRetries: cfg.NotifyMaxRetries,
		RetryBase:  cfg.NotifyRetryBase,
	})
}

func provideAuthAbuseGuard(cfg *config.Config, redisClient redis.UniversalClient) service.AuthAbuseGuard {
	policy := service.AuthAbusePolicyFromConfig(cfg)
	if cfg.RedisEnabled && redisClient != nil {
		return service.NewRedisAuthAbuseGuard(redisClient, cfg.RedisKeyPrefix, policy)
	}
	return service.NewInMemoryAuthAbuseGuard(policy)
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	if cfg.RedisEnabled && redisClient != nil {
		return middleware.NewDistributedRateLimiter(
			middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RedisKeyPrefix),
			"api",
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
		).Middleware()
	}
	return middleware.NewRateLimiter("api", cfg.APIRateLimitPerMin, time.Minute).Middleware()
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.AuthRateLimiterFunc {
	if cfg.RedisEnabled && redisClient != nil {
		return middleware.NewDistributedRateLimiter(
			middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RedisKeyPrefix),
			"auth",
			cfg.AuthRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
		).Middleware()
	}
	return middleware.NewRateLimiter("auth", cfg.AuthRateLimitPerMin, time.Minute).Middleware()
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	accountHandler *handler.AccountHandler,
	jwt *security.JWTManager,
	globalRateLimiter router.GlobalRateLimiterFunc,
	authRateLimiter router.AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		AccountHandler:    accountHandler,
		TokenParser:       jwt,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		AuthRateLimitRPM:  cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		GlobalRateLimiter: globalRateLimiter,
		AuthRateLimiter:   authRateLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, dispatcher *notification.Dispatcher) *health.ProbeRunner {
	var queue health.QueueBacklog
	if dispatcher != nil {
		queue = dispatcher
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0,
		health.NewDBChecker(db),
		health.NewRedisChecker(redisClient),
		health.NewNotificationChecker(queue),
	)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	dispatcher *notification.Dispatcher,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, dispatcher)
}
