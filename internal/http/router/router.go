package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/campusconnect/campus-connect-api/internal/health"
	"github.com/campusconnect/campus-connect-api/internal/http/handler"
	"github.com/campusconnect/campus-connect-api/internal/http/middleware"
	"github.com/campusconnect/campus-connect-api/internal/http/response"
)

const maxRequestBodyBytes = 64 << 10

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	AccountHandler   *handler.AccountHandler
	TokenParser      middleware.AccessTokenParser
	CORSOrigins      []string
	AuthRateLimitRPM int
	APIRateLimitRPM  int
	// Optional limiters. Nil falls back to a local fixed window.
	GlobalRateLimiter GlobalRateLimiterFunc
	AuthRateLimiter   AuthRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(maxRequestBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready, results := dep.Readiness.Ready(r.Context())
		if results == nil {
			results = []health.CheckResult{}
		}
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	globalLimiter := dep.GlobalRateLimiter
	if globalLimiter == nil {
		globalLimiter = middleware.NewRateLimiter("api", dep.APIRateLimitRPM, time.Minute).Middleware()
	}
	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter("auth", dep.AuthRateLimitRPM, time.Minute).Middleware()
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(globalLimiter)
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter)
			r.Use(middleware.RequireJSON)
			r.Post("/register", dep.AuthHandler.Register)
			r.Post("/verify", dep.AuthHandler.Verify)
			r.Post("/verify/resend", dep.AuthHandler.ResendVerification)
			r.Post("/login", dep.AuthHandler.Login)
			r.Post("/password/forgot", dep.AuthHandler.ForgotPassword)
			r.Post("/password/reset", dep.AuthHandler.ResetPassword)
		})
		r.With(middleware.AuthMiddleware(dep.TokenParser)).Get("/me", dep.AccountHandler.Me)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
