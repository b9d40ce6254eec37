// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/support-gateway/internal/core/coretest"
	"github.com/carterperez-dev/support-gateway/internal/middleware"
	"github.com/carterperez-dev/support-gateway/internal/quota"
	"github.com/carterperez-dev/support-gateway/internal/tenant"
)

func TestGetUsageSummary(t *testing.T) {
	db := coretest.NewSQLite(t)
	ctx := context.Background()
	tenants := tenant.NewRepository(db.DB)
	usage := quota.NewRepository(db.DB)

	seed := func(name string, active bool, requests int) string {
		id := uuid.New().String()
		require.NoError(t, tenants.Create(ctx, &tenant.Tenant{
			ID:        id,
			Name:      name,
			Plan:      tenant.PlanStarter,
			Active:    active,
			CreatedAt: time.Now().UTC(),
		}))
		for i := 0; i < requests; i++ {
			_, err := usage.Increment(ctx, id, "2026-03")
			require.NoError(t, err)
		}
		return id
	}
	seed("Acme", true, 3)
	globex := seed("Globex", true, 5)
	seed("Initech", false, 0)

	h := NewHandler(HandlerConfig{
		Repository: NewRepository(db.DB),
		PeriodKey:  func() string { return "2026-03" },
		DBPing:     db.Ping,
		DBStats:    db.Stats,
	})

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.RequireAdminKey("admin-key"))

	req := httptest.NewRequest(http.MethodGet, "/admin/usage?top=1", nil)
	req.Header.Set(middleware.AdminKeyHeader, "admin-key")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data PlatformSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, int64(3), body.Data.Tenants)
	assert.Equal(t, int64(2), body.Data.ActiveTenants)
	assert.Equal(t, int64(8), body.Data.Requests)
	require.Len(t, body.Data.TopTenants, 1)
	assert.Equal(t, globex, body.Data.TopTenants[0].TenantID)
	assert.Equal(t, int64(5), body.Data.TopTenants[0].Count)

	req = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set(middleware.AdminKeyHeader, "admin-key")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":{"healthy":true`)
	assert.Contains(t, rec.Body.String(), `"redis":{"healthy":false}`)
}

func TestAdminRoutesRequireKey(t *testing.T) {
	h := NewHandler(HandlerConfig{})
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.RequireAdminKey("admin-key"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/usage?top=0", nil)
	req.Header.Set(middleware.AdminKeyHeader, "admin-key")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSystemStats_ChatOutcomes(t *testing.T) {
	h := NewHandler(HandlerConfig{
		ChatOutcomes: func(context.Context) (map[string]int64, error) {
			return map[string]int64{"completed": 4, "quota_exceeded": 1}, nil
		},
	})
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.RequireAdminKey("admin-key"))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set(middleware.AdminKeyHeader, "admin-key")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(4), body.Data.ChatOutcomes["completed"])
	assert.Equal(t, int64(1), body.Data.ChatOutcomes["quota_exceeded"])
	assert.False(t, body.Data.Database.Healthy)
}
