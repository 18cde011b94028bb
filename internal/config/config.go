package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	JWTIssuer    string
	JWTAudience  string
	JWTSecret    string
	JWTAccessTTL time.Duration

	AuthVerificationCodeTTL   time.Duration
	AuthPasswordResetTokenTTL time.Duration
	AuthPasswordResetBaseURL  string

	AuthRateLimitPerMin int
	APIRateLimitPerMin  int

	AuthAbuseFreeAttempts       int
	AuthAbuseVerifyFreeAttempts int
	AuthAbuseBaseDelay          time.Duration
	AuthAbuseMultiplier         float64
	AuthAbuseMaxDelay           time.Duration
	AuthAbuseResetWindow        time.Duration

	RedisEnabled   bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	MailDriver   string
	MailFrom     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	NotifyQueueSize  int
	NotifyWorkers    int
	NotifyMaxRetries int
	NotifyRetryBase  time.Duration

	CORSAllowedOrigins []string

	ReadinessProbeTimeout time.Duration
	ShutdownTimeout       time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	localLike := isLocalLikeEnv(env)

	cfg := &Config{
		Env:                         env,
		HTTPPort:                    getEnv("HTTP_PORT", "8080"),
		DatabaseURL:                 os.Getenv("DATABASE_URL"),
		JWTIssuer:                   getEnv("JWT_ISSUER", "campus-connect"),
		JWTAudience:                 getEnv("JWT_AUDIENCE", "campus-connect-api"),
		JWTSecret:                   os.Getenv("JWT_SECRET"),
		AuthPasswordResetBaseURL:    strings.TrimSpace(os.Getenv("AUTH_PASSWORD_RESET_BASE_URL")),
		AuthRateLimitPerMin:         getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:          getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		AuthAbuseFreeAttempts:       getEnvInt("AUTH_ABUSE_FREE_ATTEMPTS", 5),
		AuthAbuseVerifyFreeAttempts: getEnvInt("AUTH_ABUSE_VERIFY_FREE_ATTEMPTS", 3),
		AuthAbuseMultiplier:         getEnvFloat("AUTH_ABUSE_MULTIPLIER", 2),

		RedisEnabled:   getEnvBool("REDIS_ENABLED", false),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "campus"),

		MailDriver:   strings.ToLower(getEnv("MAIL_DRIVER", "log")),
		MailFrom:     getEnv("MAIL_FROM", "Campus Connect <no-reply@campusconnect.local>"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		NotifyQueueSize:  getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		NotifyWorkers:    getEnvInt("NOTIFY_WORKERS", 2),
		NotifyMaxRetries: getEnvInt("NOTIFY_MAX_RETRIES", 3),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "campus-connect-api"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", !localLike),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", !localLike),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", !localLike),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"JWT_ACCESS_TTL", "1h", &cfg.JWTAccessTTL},
		{"AUTH_VERIFICATION_CODE_TTL", "24h", &cfg.AuthVerificationCodeTTL},
		{"AUTH_PASSWORD_RESET_TOKEN_TTL", "1h", &cfg.AuthPasswordResetTokenTTL},
		{"AUTH_ABUSE_BASE_DELAY", "2s", &cfg.AuthAbuseBaseDelay},
		{"AUTH_ABUSE_MAX_DELAY", "5m", &cfg.AuthAbuseMaxDelay},
		{"AUTH_ABUSE_RESET_WINDOW", "15m", &cfg.AuthAbuseResetWindow},
		{"NOTIFY_RETRY_BASE", "500ms", &cfg.NotifyRetryBase},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.JWTAccessTTL <= 0 || c.JWTAccessTTL > time.Hour {
		errs = append(errs, "JWT_ACCESS_TTL must be between 1s and 1h")
	}
	if c.AuthVerificationCodeTTL <= 0 {
		errs = append(errs, "AUTH_VERIFICATION_CODE_TTL must be > 0")
	}
	if c.AuthPasswordResetTokenTTL <= 0 || c.AuthPasswordResetTokenTTL > 24*time.Hour {
		errs = append(errs, "AUTH_PASSWORD_RESET_TOKEN_TTL must be between 1s and 24h")
	}
	if c.AuthPasswordResetBaseURL != "" {
		if u, err := url.Parse(c.AuthPasswordResetBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, "AUTH_PASSWORD_RESET_BASE_URL must be an absolute URL")
		}
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.AuthAbuseFreeAttempts < 0 {
		errs = append(errs, "AUTH_ABUSE_FREE_ATTEMPTS must be >= 0")
	}
	if c.AuthAbuseVerifyFreeAttempts < 0 {
		errs = append(errs, "AUTH_ABUSE_VERIFY_FREE_ATTEMPTS must be >= 0")
	}
	if c.AuthAbuseMultiplier < 1 {
		errs = append(errs, "AUTH_ABUSE_MULTIPLIER must be >= 1")
	}
	if c.RedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	switch c.MailDriver {
	case "log":
	case "smtp":
		if c.SMTPHost == "" {
			errs = append(errs, "SMTP_HOST is required when MAIL_DRIVER=smtp")
		}
		if c.SMTPPort <= 0 {
			errs = append(errs, "SMTP_PORT must be > 0")
		}
	default:
		errs = append(errs, "MAIL_DRIVER must be one of log, smtp")
	}
	if !isLocalLikeEnv(c.Env) {
		if c.MailDriver != "smtp" {
			errs = append(errs, "MAIL_DRIVER must be smtp outside local environments")
		}
		if c.AuthPasswordResetBaseURL == "" {
			errs = append(errs, "AUTH_PASSWORD_RESET_BASE_URL is required outside local environments")
		}
	}
	if c.MailFrom == "" {
		errs = append(errs, "MAIL_FROM is required")
	}
	if c.NotifyQueueSize <= 0 {
		errs = append(errs, "NOTIFY_QUEUE_SIZE must be > 0")
	}
	if c.NotifyWorkers <= 0 {
		errs = append(errs, "NOTIFY_WORKERS must be > 0")
	}
	if c.NotifyMaxRetries < 0 {
		errs = append(errs, "NOTIFY_MAX_RETRIES must be >= 0")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// LocalLike reports whether the service runs on a developer machine or in tests.
func (c *Config) LocalLike() bool {
	return isLocalLikeEnv(c.Env)
}

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
