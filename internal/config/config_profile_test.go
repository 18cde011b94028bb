package config

import (
	"strings"
	"testing"
	"time"
)

func validDevConfig() *Config {
	return &Config{
		Env:                       "development",
		DatabaseURL:               "postgres://x",
		JWTSecret:                 "abcdefghijklmnopqrstuvwxyz123456",
		JWTAccessTTL:              time.Hour,
		AuthVerificationCodeTTL:   24 * time.Hour,
		AuthPasswordResetTokenTTL: time.Hour,
		AuthRateLimitPerMin:       30,
		APIRateLimitPerMin:        120,
		AuthAbuseFreeAttempts:     5,
		AuthAbuseMultiplier:       2,
		MailDriver:                "log",
		MailFrom:                  "no-reply@example.edu",
		NotifyQueueSize:           16,
		NotifyWorkers:             1,
		NotifyMaxRetries:          3,
		OTELTraceSamplingRatio:    1.0,
		OTELMetricsExportInterval: 10 * time.Second,
		OTELLogLevel:              "info",
	}
}

func TestValidateProdProfileStrictRules(t *testing.T) {
	cfg := validDevConfig()
	cfg.Env = "production"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected strict prod validation errors")
	}
	for _, want := range []string{"MAIL_DRIVER must be smtp", "AUTH_PASSWORD_RESET_BASE_URL is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}

	cfg.MailDriver = "smtp"
	cfg.SMTPHost = "smtp.example.edu"
	cfg.SMTPPort = 587
	cfg.AuthPasswordResetBaseURL = "https://campus.example.edu/reset-password"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected prod config to pass once mail is configured: %v", err)
	}
}

func TestValidateDevelopmentProfileAllowsRelaxedSettings(t *testing.T) {
	if err := validDevConfig().Validate(); err != nil {
		t.Fatalf("expected relaxed dev validation to pass: %v", err)
	}
}

func TestValidateRejectsLongAccessTokenTTL(t *testing.T) {
	cfg := validDevConfig()
	cfg.JWTAccessTTL = 2 * time.Hour
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_TTL") {
		t.Fatalf("expected JWT_ACCESS_TTL error, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{Env: "test", MailDriver: "pigeon", OTELLogLevel: "loud"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"DATABASE_URL is required", "JWT_SECRET", "MAIL_DRIVER must be one of", "OTEL_LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "sqlite://file::memory:")
	t.Setenv("JWT_SECRET", "abcdefghijklmnopqrstuvwxyz123456")
	t.Setenv("AUTH_VERIFICATION_CODE_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.edu, https://b.example.edu,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTAccessTTL != time.Hour {
		t.Fatalf("expected default 1h access ttl, got %v", cfg.JWTAccessTTL)
	}
	if cfg.AuthVerificationCodeTTL != 30*time.Minute {
		t.Fatalf("expected 30m verification ttl, got %v", cfg.AuthVerificationCodeTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.OTELTracingEnabled {
		t.Fatal("expected tracing disabled by default in test env")
	}
	if cfg.AuthAbuseFreeAttempts != 5 || cfg.AuthAbuseVerifyFreeAttempts != 3 {
		t.Fatalf("unexpected abuse budgets: %d/%d", cfg.AuthAbuseFreeAttempts, cfg.AuthAbuseVerifyFreeAttempts)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://file::memory:")
	t.Setenv("JWT_SECRET", "abcdefghijklmnopqrstuvwxyz123456")
	t.Setenv("AUTH_PASSWORD_RESET_TOKEN_TTL", "soon")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "AUTH_PASSWORD_RESET_TOKEN_TTL") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLocalLike(t *testing.T) {
	for env, want := range map[string]bool{
		"development": true,
		" Local ":     true,
		"test":        true,
		"staging":     false,
		"production":  false,
	} {
		if got := (&Config{Env: env}).LocalLike(); got != want {
			t.Fatalf("LocalLike(%q) = %v, want %v", env, got, want)
		}
	}
}
