// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/support-gateway/internal/config"
	"github.com/carterperez-dev/support-gateway/internal/core"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

type fakeVerifier struct {
	subject string
	err     error
}

func (f fakeVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &AccessTokenClaims{
		Subject:   f.subject,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestAuthenticator(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier fakeVerifier
		want     int
	}{
		{"missing header", "", fakeVerifier{subject: "a@b.test"}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fakeVerifier{subject: "a@b.test"}, http.StatusUnauthorized},
		{"expired", "Bearer tok", fakeVerifier{err: core.ErrTokenExpired}, http.StatusUnauthorized},
		{"invalid", "Bearer tok", fakeVerifier{err: errors.New("bad")}, http.StatusUnauthorized},
		{"valid", "Bearer tok", fakeVerifier{subject: "a@b.test"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			h := Authenticator(tt.verifier)(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					subject = GetSubject(r.Context())
					require.NotNil(t, GetClaims(r.Context()))
					w.WriteHeader(http.StatusOK)
				},
			))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "a@b.test", subject)
			}
		})
	}
}

func TestAuthenticator_ExpiredCode(t *testing.T) {
	h := Authenticator(fakeVerifier{err: core.ErrTokenExpired})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

func TestRequireAdminKey(t *testing.T) {
	h := RequireAdminKey("s3cret")(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminKeyHeader, "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminKeyHeader, "s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminKey_Unconfigured(t *testing.T) {
	h := RequireAdminKey("")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminKeyHeader, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginThrottle_LocalFallback(t *testing.T) {
	h := LoginThrottle(nil, 60, 2)(okHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "ratelimit:ip:192.0.2.7", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 198.51.100.9")
	assert.Equal(t, "ratelimit:ip:198.51.100.9", KeyByIP(req))
}

func TestCORS(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins: []string{"https://shop.test"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization"},
		MaxAge:         300,
	})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/v1/chat", nil)
	req.Header.Set("Origin", "https://shop.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(true)(okHandler).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/", nil),
	)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestTracing_PassesThrough(t *testing.T) {
	h := Tracing("test")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for _, path := range []string{"/v1/chat", "/healthz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code, path)
	}
}
