// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func get(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadiness(t *testing.T) {
	h := NewHandler(Dependency{"database", up}, Dependency{"redis", up})
	rec := get(h, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	h = NewHandler(Dependency{"database", up}, Dependency{"redis", down})
	rec = get(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)

	h = NewHandler(Dependency{Name: "redis"})
	rec = get(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestShutdown(t *testing.T) {
	h := NewHandler(Dependency{"database", up})
	assert.Equal(t, http.StatusOK, get(h, "/healthz").Code)

	h.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(h, "/livez").Code)

	h.SetShutdown(true)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/healthz").Code)
}
