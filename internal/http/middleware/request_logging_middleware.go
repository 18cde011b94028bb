package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/campusconnect/campus-connect-api/internal/observability"
)

type requestLogKey struct{}

// requestLogFields is filled by inner middleware so the outer access log can
// name the authenticated account.
type requestLogFields struct {
	accountID string
}

func annotateAccount(ctx context.Context, accountID string) {
	if f, ok := ctx.Value(requestLogKey{}).(*requestLogFields); ok {
		f.accountID = accountID
	}
}

// StructuredRequestLogger emits one slog line per request. Only the path is
// logged, never the query string or body.
func StructuredRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		fields := &requestLogFields{}
		r = r.WithContext(context.WithValue(r.Context(), requestLogKey{}, fields))
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"client_ip", observability.ClientIP(r),
			"user_agent", r.UserAgent(),
		}
		if fields.accountID != "" {
			attrs = append(attrs, "account_id", fields.accountID)
		}
		slog.Log(r.Context(), accessLogLevel(r.URL.Path, status), "http.request", attrs...)
	})
}

func accessLogLevel(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status == http.StatusTooManyRequests, status == http.StatusUnauthorized:
		return slog.LevelWarn
	case strings.HasPrefix(path, "/health/"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
