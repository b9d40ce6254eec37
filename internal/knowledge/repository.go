// AngelaMos | 2026
// repository.go

package knowledge

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

type Repository interface {
	ReplaceAll(ctx context.Context, tenantID string, entries []Entry) error
	ListEnabled(ctx context.Context, tenantID string) (Context, error)
	List(ctx context.Context, tenantID string) ([]Entry, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// ReplaceAll swaps the tenant's whole entry set in one transaction. Readers
// see either the old set or the new one.
func (r *repository) ReplaceAll(
	ctx context.Context,
	tenantID string,
	entries []Entry,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			DELETE FROM knowledge_entries WHERE tenant_id = ?`),
			tenantID,
		)
		if err != nil {
			return fmt.Errorf("clear knowledge: %w: %w", core.ErrStore, err)
		}

		insert := tx.Rebind(`
			INSERT INTO knowledge_entries (tenant_id, key, value, enabled)
			VALUES (?, ?, ?, ?)`)

		for _, e := range entries {
			if _, err := tx.ExecContext(ctx, insert,
				tenantID,
				e.Key,
				e.Value,
				e.Enabled,
			); err != nil {
				return fmt.Errorf(
					"insert knowledge %q: %w: %w",
					e.Key, core.ErrStore, err,
				)
			}
		}

		return nil
	})
}

func (r *repository) ListEnabled(
	ctx context.Context,
	tenantID string,
) (Context, error) {
	query := r.db.Rebind(`
		SELECT key, value
		FROM knowledge_entries
		WHERE tenant_id = ? AND enabled = ?
		ORDER BY key`)

	var facts Context
	if err := r.db.SelectContext(ctx, &facts, query, tenantID, true); err != nil {
		return nil, fmt.Errorf("list enabled knowledge: %w: %w", core.ErrStore, err)
	}

	return facts, nil
}

func (r *repository) List(ctx context.Context, tenantID string) ([]Entry, error) {
	query := r.db.Rebind(`
		SELECT tenant_id, key, value, enabled
		FROM knowledge_entries
		WHERE tenant_id = ?
		ORDER BY key`)

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, tenantID); err != nil {
		return nil, fmt.Errorf("list knowledge: %w: %w", core.ErrStore, err)
	}

	return entries, nil
}
