package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/config"
	"github.com/campusconnect/campus-connect-api/internal/database"
	"github.com/campusconnect/campus-connect-api/internal/health"
	"github.com/campusconnect/campus-connect-api/internal/http/handler"
	"github.com/campusconnect/campus-connect-api/internal/notification"
	"github.com/campusconnect/campus-connect-api/internal/repository"
	"github.com/campusconnect/campus-connect-api/internal/security"
	"github.com/campusconnect/campus-connect-api/internal/service"
)

const testJWTSecret = "router-test-secret-0123456789abcdef"

var verificationCodePattern = regexp.MustCompile(`verification code is: (\d{6})`)

type mailbox struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (m *mailbox) Send(_ context.Context, msg notification.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mailbox) last(t *testing.T, to, kind string) notification.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to && m.sent[i].Kind == kind {
			return m.sent[i]
		}
	}
	t.Fatalf("no %s email for %s", kind, to)
	return notification.Message{}
}

type fixtureOptions struct {
	authRPM      int
	freeAttempts int
	readiness    *health.ProbeRunner
}

type routerFixture struct {
	t       *testing.T
	handler http.Handler
	mail    *mailbox
	jwt     *security.JWTManager

	mu     sync.Mutex
	bodies []string
}

func newRouterFixture(t *testing.T, opts fixtureOptions) *routerFixture {
	t.Helper()
	if opts.authRPM == 0 {
		opts.authRPM = 1000
	}
	if opts.freeAttempts == 0 {
		opts.freeAttempts = 5
	}
	cfg := &config.Config{
		JWTAccessTTL:              time.Hour,
		AuthVerificationCodeTTL:   24 * time.Hour,
		AuthPasswordResetTokenTTL: time.Hour,
		AuthAbuseFreeAttempts:     opts.freeAttempts,
		AuthAbuseBaseDelay:        30 * time.Second,
		AuthAbuseMultiplier:       2,
		AuthAbuseMaxDelay:         5 * time.Minute,
		AuthAbuseResetWindow:      15 * time.Minute,
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenURL("file:router_" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	renderer, err := notification.NewRenderer(notification.RendererConfig{
		ResetBaseURL:    "https://campus.example.edu/reset-password",
		VerificationTTL: cfg.AuthVerificationCodeTTL,
		ResetTTL:        cfg.AuthPasswordResetTokenTTL,
	})
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	mail := &mailbox{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtMgr := security.NewJWTManager("campus-connect", "campus-connect-api", testJWTSecret, cfg.JWTAccessTTL)
	authSvc := service.NewAuthService(
		cfg,
		repository.NewAccountRepository(db),
		security.NewPasswordHasher(security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32}),
		security.NewRandomCodeGenerator(),
		jwtMgr,
		notification.NewSyncDispatcher(renderer, mail, 0, 0),
		logger,
	)
	guard := service.NewInMemoryAuthAbuseGuard(service.AuthAbusePolicyFromConfig(cfg))

	h := NewRouter(Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc, guard, logger),
		AccountHandler:   handler.NewAccountHandler(authSvc, logger),
		TokenParser:      jwtMgr,
		CORSOrigins:      []string{"https://app.campus.example.edu"},
		AuthRateLimitRPM: opts.authRPM,
		APIRateLimitRPM:  1000,
		Readiness:        opts.readiness,
	})
	return &routerFixture{t: t, handler: h, mail: mail, jwt: jwtMgr}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                     `json:"code"`
		Message string                     `json:"message"`
		Details map[string]json.RawMessage `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func (fx *routerFixture) do(method, path, body, bearer string) (*httptest.ResponseRecorder, envelope) {
	fx.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	fx.handler.ServeHTTP(rr, req)

	raw := rr.Body.String()
	fx.mu.Lock()
	fx.bodies = append(fx.bodies, raw)
	fx.mu.Unlock()

	var env envelope
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			fx.t.Fatalf("decode %s %s response %q: %v", method, path, raw, err)
		}
	}
	return rr, env
}

func (fx *routerFixture) expect(method, path, body, bearer string, wantStatus int, wantCode string) envelope {
	fx.t.Helper()
	rr, env := fx.do(method, path, body, bearer)
	if rr.Code != wantStatus {
		fx.t.Fatalf("%s %s: expected %d, got %d: %s", method, path, wantStatus, rr.Code, rr.Body.String())
	}
	if wantCode == "" {
		if !env.Success {
			fx.t.Fatalf("%s %s: expected success envelope, got %+v", method, path, env.Error)
		}
		return env
	}
	if env.Success || env.Error == nil || env.Error.Code != wantCode {
		fx.t.Fatalf("%s %s: expected error %s, got %+v", method, path, wantCode, env.Error)
	}
	return env
}

func (fx *routerFixture) verificationCode(email string) string {
	fx.t.Helper()
	msg := fx.mail.last(fx.t, email, notification.KindVerification)
	m := verificationCodePattern.FindStringSubmatch(msg.TextBody)
	if m == nil {
		fx.t.Fatalf("no code in verification email: %q", msg.TextBody)
	}
	return m[1]
}

func (fx *routerFixture) resetToken(email string) string {
	fx.t.Helper()
	msg := fx.mail.last(fx.t, email, notification.KindPasswordReset)
	for _, line := range strings.Split(msg.TextBody, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "https://") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil {
			fx.t.Fatalf("parse reset link: %v", err)
		}
		return u.Query().Get("token")
	}
	fx.t.Fatalf("no reset link in email: %q", msg.TextBody)
	return ""
}

func (fx *routerFixture) login(email, password string) string {
	fx.t.Helper()
	env := fx.expect(http.MethodPost, "/api/v1/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, "", http.StatusOK, "")
	var data struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		fx.t.Fatalf("decode login data: %v", err)
	}
	if data.Token == "" || data.TokenType != "Bearer" {
		fx.t.Fatalf("unexpected login payload: %s", env.Data)
	}
	return data.Token
}

func (fx *routerFixture) registerVerified(name, email, password string) {
	fx.t.Helper()
	fx.expect(http.MethodPost, "/api/v1/auth/register", `{"display_name":"`+name+`","email":"`+email+`","password":"`+password+`"}`, "", http.StatusCreated, "")
	fx.expect(http.MethodPost, "/api/v1/auth/verify", `{"email":"`+email+`","code":"`+fx.verificationCode(email)+`"}`, "", http.StatusOK, "")
}

func TestRegisterVerifyLoginScenario(t *testing.T) {
	fx := newRouterFixture(t, fixtureOptions{})

	fx.expect(http.MethodPost, "/api/v1/auth/register", `{"display_name":"Ann","email":"ann@x.edu","password":"Secret123!"}`, "", http.StatusCreated, "")
	fx.expect(http.MethodPost, "/api/v1/auth/login", `{"email":"ann@x.edu","password":"Secret123!"}`, "", http.StatusBadRequest, "INVALID_CREDENTIALS")
	fx.expect(http.MethodPost, "/api/v1/auth/register", `{"display_name":"Ann","email":"ann@x.edu","password":"Secret123!"}`, "", http.StatusBadRequest, "ACCOUNT_ALREADY_EXISTS")

	code := fx.verificationCode("ann@x.edu")
	wrong := "100000"
	if code == wrong {
		wrong = "100001"
	}
	fx.expect(http.MethodPost, "/api/v1/auth/verify", `{"email":"ann@x.edu","code":"`+wrong+`"}`, "", http.StatusBadRequest, "CODE_MISMATCH")
	fx.expect(http.MethodPost, "/api/v1/auth/verify", `{"email":"ann@x.edu","code":"`+code+`"}`, "", http.StatusOK, "")
	fx.expect(http.MethodPost, "/api/v1/auth/verify", `{"email":"ann@x.edu","code":"`+code+`"}`, "", http.StatusBadRequest, "CODE_MISMATCH")
	fx.expect(http.MethodPost, "/api/v1/auth/verify", `{"email":"ann@x.edu","code":"garbage"}`, "", http.StatusBadRequest, "CODE_MISMATCH")

	token := fx.login("ann@x.edu", "Secret123!")
	env := fx.expect(http.MethodGet, "/api/v1/me", "", token, http.StatusOK, "")
	var me struct {
		Email      string `json:"email"`
		Role       string `json:"role"`
		IsVerified bool   `json:"is_verified"`
	}
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Email != "ann@x.edu" || me.Role != "student" || !me.IsVerified {
		t.Fatalf("unexpected profile: %+v", me)
	}
	fx.assertNoSecretsInResponses()
}

func TestPasswordResetScenario(t *testing.T) {
	fx := newRouterFixture(t, fixtureOptions{})
	fx.registerVerified("Ann", "ann@x.edu", "Secret123!")

	fx.expect(http.MethodPost, "/api/v1/auth/password/forgot", `{"email":"ann@x.edu"}`, "", http.StatusOK, "")
	raw := fx.resetToken("ann@x.edu")
	if len(raw) != 64 {
		t.Fatalf("expected 64 hex char reset secret, got %q", raw)
	}

	fx.expect(http.MethodPost, "/api/v1/auth/password/reset", `{"token":"`+raw+`","new_password":"NewPass1!"}`, "", http.StatusOK, "")
	fx.login("ann@x.edu", "NewPass1!")
	fx.expect(http.MethodPost, "/api/v1/auth/login", `{"email":"ann@x.edu","password":"Secret123!"}`, "", http.StatusBadRequest, "INVALID_CREDENTIALS")
	fx.expect(http.MethodPost, "/api/v1/auth/password/reset", `{"token":"`+raw+`","new_password":"Another1!"}`, "", http.StatusBadRequest, "INVALID_OR_EXPIRED_TOKEN")
	fx.assertNoSecretsInResponses(raw)
}

func TestUnknownAccountResponses(t *testing.T) {
	fx := newRouterFixture(t, fixtureOptions{})

	fx.expect(http.MethodPost, "/api/v1/auth/verify", `{"email":"nobody@x.edu","code":"123456"}`, "", http.StatusBadRequest, "ACCOUNT_NOT_FOUND")
	fx.expect(http.MethodPost, "/api/v1/auth/password/forgot", `{"email":"nobody@x.edu"}`, "", http.StatusNotFound, "ACCOUNT_NOT_FOUND")
	fx.expect(http.MethodPost, "/api/v1/auth/verify/resend", `{"email":"nobody@x.edu"}`, "", http.StatusNotFound, "ACCOUNT_NOT_FOUND")
	fx.expect(http.MethodPost, "/api/v1/auth/login", `{"email":"nobody@x.edu","password":"Secret123!"}`, "", http.StatusBadRequest, "INVALID_CREDENTIALS")
}

func TestResendIssuesFreshCode(t *testing.T) {
	fx := newRouterFixture(t, fixtureOptions{})
	fx.expect(http.MethodPost, "/api/v1/auth/register", `{"display_name":"Ann","email":"ann@x.edu","password":"Secret123!"}`, "", http.StatusCreated, "")
	first := fx.verificationCode("ann@x.edu")

	fx.expect(http.MethodPost, "/api/v1/auth/verify/resend", `{"email":"ann@x.edu"}`, "", http.StatusAccepted, "")
	second := fx.verificationCode("ann@x.edu")
	if first != second {
		fx.expect(http.MethodPost, "/api/v1/auth/verify", `{"email":"ann@x.edu","code":"`+first+`"}`, "", http.StatusBadRequest, "CODE_MISMATCH")
	}
	fx.expect(http.MethodPost, "/api/v1/auth/verify", `{"email":"ann@x.edu","code":"`+second+`"}`, "", http.StatusOK, "")
}

func TestValidationErrorsCarryFieldDetails(t *testing.T) {
	fx := newRouterFixture(t, fixtureOptions{})
	env := fx.expect(http.MethodPost, "/api/v1/auth/register", `{"display_name":"","email":"nope","password":"short"}`, "", http.StatusBadRequest, "VALIDATION_ERROR")
	for _, field := range []string{"display_name", "email", "password"} {
		var msg string
		if err := json.Unmarshal(env.Error.Details[field], &msg); err != nil || msg == "" {
			t.Fatalf("expected detail for %s, got %+v", field, env.Error.Details)
		}
	}
	if env.Meta.RequestID == "" {
		t.Fatal("expected request id in meta")
	}
}

func TestMeRequiresBearerToken(t *testing.T) {
	fx := newRouterFixture(t, fixtureOptions{})
	fx.expect(http.MethodGet, "/api/v1/me", "", "", http.StatusUnauthorized, "UNAUTHORIZED")
	fx.expect(http.MethodGet, "/api/v1/me", "", "not-a-jwt", http.StatusUnauthorized, "UNAUTHORIZED")

	orphan, _, err := fx.jwt.SignAccessToken("00000000-0000-0000-0000-000000000000", "student")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	fx.expect(http.MethodGet, "/api/v1/me", "", orphan, http.StatusNotFound, "ACCOUNT_NOT_FOUND")
}

func TestLoginAbuseGuardCooldown(t *testing.T) {
	fx := newRouterFixture(t, fixtureOptions{freeAttempts: 2})
	fx.registerVerified("Ann", "ann@x.edu", "Secret123!")

	bad := `{"email":"ann@x.edu","password":"Wrong123!"}`
	fx.expect(http.MethodPost, "/api/v1/auth/login", bad, "", http.StatusBadRequest, "INVALID_CREDENTIALS")
	fx.expect(http.MethodPost, "/api/v1/auth/login", bad, "", http.StatusBadRequest, "INVALID_CREDENTIALS")
	fx.expect(http.MethodPost, "/api/v1/auth/login", bad, "", http.StatusBadRequest, "INVALID_CREDENTIALS")

	rr, env := fx.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ann@x.edu","password":"Secret123!"}`, "")
	if rr.Code != http.StatusTooManyRequests || env.Error == nil || env.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected cooldown to block even the right password, got %d %+v", rr.Code, env.Error)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	// Other scopes keep their own budget.
	fx.expect(http.MethodPost, "/api/v1/auth/password/forgot", `{"email":"ann@x.edu"}`, "", http.StatusOK, "")
}

func TestAuthRouteRateLimit(t *testing.T) {
	fx := newRouterFixture(t, fixtureOptions{authRPM: 2})
	body := `{"email":"nobody@x.edu","password":"Secret123!"}`
	fx.expect(http.MethodPost, "/api/v1/auth/login", body, "", http.StatusBadRequest, "INVALID_CREDENTIALS")
	fx.expect(http.MethodPost, "/api/v1/auth/login", body, "", http.StatusBadRequest, "INVALID_CREDENTIALS")
	rr, env := fx.do(http.MethodPost, "/api/v1/auth/login", body, "")
	if rr.Code != http.StatusTooManyRequests || env.Error == nil || env.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected rate limit, got %d %+v", rr.Code, env.Error)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	fx.expect(http.MethodGet, "/health/live", "", "", http.StatusOK, "")
}

func TestHealthRoutes(t *testing.T) {
	t.Run("ready without dependencies", func(t *testing.T) {
		fx := newRouterFixture(t, fixtureOptions{})
		fx.expect(http.MethodGet, "/health/live", "", "", http.StatusOK, "")
		fx.expect(http.MethodGet, "/health/ready", "", "", http.StatusOK, "")
	})

	t.Run("grace period reports unready", func(t *testing.T) {
		fx := newRouterFixture(t, fixtureOptions{readiness: health.NewProbeRunner(time.Second, time.Hour)})
		env := fx.expect(http.MethodGet, "/health/ready", "", "", http.StatusServiceUnavailable, "DEPENDENCY_UNREADY")
		var checks []health.CheckResult
		if err := json.Unmarshal(env.Error.Details["checks"], &checks); err != nil {
			t.Fatalf("decode checks: %v", err)
		}
		if len(checks) != 1 || checks[0].Name != "startup_grace" || checks[0].Healthy {
			t.Fatalf("expected a failing startup_grace check, got %+v", checks)
		}
	})
}

func TestRouterEdgeBehaviour(t *testing.T) {
	t.Run("unknown route uses envelope", func(t *testing.T) {
		fx := newRouterFixture(t, fixtureOptions{})
		fx.expect(http.MethodGet, "/api/v1/nope", "", "", http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("wrong method uses envelope", func(t *testing.T) {
		fx := newRouterFixture(t, fixtureOptions{})
		fx.expect(http.MethodGet, "/api/v1/auth/login", "", "", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
	})

	t.Run("cors preflight for allowed origin", func(t *testing.T) {
		fx := newRouterFixture(t, fixtureOptions{})
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
		req.Header.Set("Origin", "https://app.campus.example.edu")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		fx.handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
		if rr.Header().Get("Access-Control-Allow-Origin") != "https://app.campus.example.edu" {
			t.Fatalf("unexpected allow origin %q", rr.Header().Get("Access-Control-Allow-Origin"))
		}
		if rr.Header().Get("Access-Control-Allow-Credentials") != "" {
			t.Fatal("credentials must not be allowed cross-origin")
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		fx := newRouterFixture(t, fixtureOptions{})
		body := `{"email":"` + strings.Repeat("a", maxRequestBodyBytes) + `@x.edu","password":"x"}`
		fx.expect(http.MethodPost, "/api/v1/auth/login", body, "", http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE")
	})

	t.Run("non json body is refused", func(t *testing.T) {
		fx := newRouterFixture(t, fixtureOptions{})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("email=a@x.edu"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		fx.handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnsupportedMediaType || !strings.Contains(rr.Body.String(), "UNSUPPORTED_MEDIA_TYPE") {
			t.Fatalf("expected 415 envelope, got %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("security headers", func(t *testing.T) {
		fx := newRouterFixture(t, fixtureOptions{})
		rr, _ := fx.do(http.MethodGet, "/health/live", "", "")
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("Cache-Control") != "no-store" {
			t.Fatalf("missing security headers: %v", rr.Header())
		}
	})
}

func (fx *routerFixture) assertNoSecretsInResponses(secrets ...string) {
	fx.t.Helper()
	fx.mu.Lock()
	defer fx.mu.Unlock()
	forbidden := append([]string{"password_hash", "verification_code", "reset_token", "$argon2id$"}, secrets...)
	for _, body := range fx.bodies {
		for _, s := range forbidden {
			if s != "" && strings.Contains(body, s) {
				fx.t.Fatalf("response leaked %q: %s", s, body)
			}
		}
	}
}
