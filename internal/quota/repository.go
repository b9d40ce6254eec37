// AngelaMos | 2026
// repository.go

package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

type Repository interface {
	Count(ctx context.Context, tenantID, periodKey string) (int64, error)
	Increment(ctx context.Context, tenantID, periodKey string) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Count returns zero for a period with no counter row yet.
func (r *repository) Count(
	ctx context.Context,
	tenantID, periodKey string,
) (int64, error) {
	query := r.db.Rebind(`
		SELECT count
		FROM usage_counters
		WHERE tenant_id = ? AND period_key = ?`)

	var count int64
	err := r.db.GetContext(ctx, &count, query, tenantID, periodKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read usage: %w: %w", core.ErrStore, err)
	}

	return count, nil
}

// Increment adds one to the period counter in a single statement, creating
// the row on first use, and returns the new value.
func (r *repository) Increment(
	ctx context.Context,
	tenantID, periodKey string,
) (int64, error) {
	query := r.db.Rebind(`
		INSERT INTO usage_counters (tenant_id, period_key, count)
		VALUES (?, ?, 1)
		ON CONFLICT (tenant_id, period_key)
		DO UPDATE SET count = usage_counters.count + 1
		RETURNING count`)

	var count int64
	if err := r.db.GetContext(ctx, &count, query, tenantID, periodKey); err != nil {
		return 0, fmt.Errorf("record usage: %w: %w", core.ErrStore, err)
	}

	return count, nil
}
