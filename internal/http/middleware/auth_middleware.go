package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusconnect/campus-connect-api/internal/http/response"
	"github.com/campusconnect/campus-connect-api/internal/observability"
	"github.com/campusconnect/campus-connect-api/internal/security"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

type AccessTokenParser interface {
	ParseAccessToken(raw string) (*security.Claims, error)
}

// AuthMiddleware accepts only "Authorization: Bearer <token>". A bad token is
// rejected outright.
func AuthMiddleware(parser AccessTokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing", "header")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
				return
			}
			claims, err := parser.ParseAccessToken(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid", "header")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "ok", "header")
			annotateAccount(r.Context(), claims.AccountID())
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}
