package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

func newTestJWTManager(now time.Time) *JWTManager {
	m := NewJWTManager("campus-connect", "campus-connect-api", testJWTSecret, time.Hour)
	m.now = func() time.Time { return now }
	return m
}

func TestSignAndParseAccessToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestJWTManager(now)

	raw, exp, err := m.SignAccessToken("acc-1", "student")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected exp %v, got %v", now.Add(time.Hour), exp)
	}
	claims, err := m.ParseAccessToken(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.AccountID() != "acc-1" || claims.Role != "student" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.IssuedAt.Time.Equal(now) || !claims.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected iat/exp: %v %v", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestParseAccessTokenRejections(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestJWTManager(now)
	valid, _, err := m.SignAccessToken("acc-1", "student")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	expired := newTestJWTManager(now.Add(-2 * time.Hour))
	expiredToken, _, _ := expired.SignAccessToken("acc-1", "student")

	otherSecret := NewJWTManager("campus-connect", "campus-connect-api", strings.Repeat("z", 32), time.Hour)
	otherSecret.now = m.now
	forged, _, _ := otherSecret.SignAccessToken("acc-1", "admin")

	wrongAudience := NewJWTManager("campus-connect", "other-api", testJWTSecret, time.Hour)
	wrongAudience.now = m.now
	audToken, _, _ := wrongAudience.SignAccessToken("acc-1", "student")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "acc-1",
		Issuer:    "campus-connect",
		Audience:  jwt.ClaimStrings{"campus-connect-api"},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	noneToken, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	validParts := strings.Split(valid, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := validParts[0] + "." + forgedParts[1] + "." + validParts[2]

	cases := map[string]string{
		"expired":        expiredToken,
		"wrong secret":   forged,
		"wrong audience": audToken,
		"alg none":       noneToken,
		"tampered":       tampered,
		"garbage":        "not-a-token",
		"empty":          "",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := m.ParseAccessToken(raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
