// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

type TenantUsage struct {
	TenantID string `db:"tenant_id" json:"tenant_id"`
	Name     string `db:"name"      json:"name"`
	Plan     string `db:"plan"      json:"plan"`
	Count    int64  `db:"count"     json:"count"`
}

type PlatformSummary struct {
	Tenants       int64         `json:"tenants"`
	ActiveTenants int64         `json:"active_tenants"`
	Period        string        `json:"period"`
	Requests      int64         `json:"requests"`
	TopTenants    []TenantUsage `json:"top_tenants"`
}

type Repository interface {
	Summary(ctx context.Context, periodKey string, top int) (*PlatformSummary, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Summary(
	ctx context.Context,
	periodKey string,
	top int,
) (*PlatformSummary, error) {
	var counts struct {
		Tenants int64 `db:"tenants"`
		Active  int64 `db:"active"`
	}
	err := r.db.GetContext(ctx, &counts, `
		SELECT COUNT(*) AS tenants,
		       CAST(COALESCE(SUM(CASE WHEN active THEN 1 ELSE 0 END), 0) AS BIGINT) AS active
		FROM tenants`)
	if err != nil {
		return nil, fmt.Errorf("count tenants: %w: %w", core.ErrStore, err)
	}

	var requests int64
	err = r.db.GetContext(ctx, &requests, r.db.Rebind(`
		SELECT CAST(COALESCE(SUM(count), 0) AS BIGINT)
		FROM usage_counters
		WHERE period_key = ?`), periodKey)
	if err != nil {
		return nil, fmt.Errorf("sum usage: %w: %w", core.ErrStore, err)
	}

	topTenants := []TenantUsage{}
	err = r.db.SelectContext(ctx, &topTenants, r.db.Rebind(`
		SELECT u.tenant_id, t.name, t.plan, u.count
		FROM usage_counters u
		JOIN tenants t ON t.id = u.tenant_id
		WHERE u.period_key = ?
		ORDER BY u.count DESC, t.name
		LIMIT ?`), periodKey, top)
	if err != nil {
		return nil, fmt.Errorf("top tenants: %w: %w", core.ErrStore, err)
	}

	return &PlatformSummary{
		Tenants:       counts.Tenants,
		ActiveTenants: counts.Active,
		Period:        periodKey,
		Requests:      requests,
		TopTenants:    topTenants,
	}, nil
}
