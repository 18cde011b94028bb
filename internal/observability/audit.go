package observability

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Audit writes one structured line per security-relevant outcome. Event names
// end in their outcome ("auth.login.failed"); failed and blocked outcomes log
// at warn. Callers pass identifiers only; credentials and codes never go in
// attrs.
func Audit(r *http.Request, event string, attrs ...any) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)
	if requestID == "" {
		requestID = r.Header.Get(chimiddleware.RequestIDHeader)
	}
	outcome := event[strings.LastIndex(event, ".")+1:]
	level := slog.LevelInfo
	if outcome == "failed" || outcome == "blocked" {
		level = slog.LevelWarn
	}
	base := []any{
		"event", event,
		"outcome", outcome,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID,
		"client_ip", ClientIP(r),
	}
	NewLogger().Log(ctx, level, "audit", append(base, attrs...)...)
}

func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
