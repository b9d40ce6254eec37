// AngelaMos | 2026
// repository.go

package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetIDByEmail(ctx context.Context, email string) (string, error)
	Update(ctx context.Context, t *Tenant) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Tenant) error {
	query := r.db.Rebind(`
		INSERT INTO tenants (id, name, plan, active, created_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		string(t.Plan),
		t.Active,
		t.CreatedAt,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create tenant: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tenant: %w: %w", core.ErrStore, err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Tenant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("get tenant: %w", core.ErrNotFound)
	}

	query := r.db.Rebind(`
		SELECT id, name, plan, active, created_at
		FROM tenants
		WHERE id = ?`)

	var t Tenant
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tenant: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w: %w", core.ErrStore, err)
	}

	return &t, nil
}

func (r *repository) GetIDByEmail(
	ctx context.Context,
	email string,
) (string, error) {
	query := r.db.Rebind(`
		SELECT c.tenant_id
		FROM credentials c
		JOIN tenants t ON t.id = c.tenant_id
		WHERE c.email = ?`)

	var tenantID string
	err := r.db.GetContext(ctx, &tenantID, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("resolve tenant for user: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf(
			"resolve tenant for user: %w: %w",
			core.ErrStore,
			err,
		)
	}

	return tenantID, nil
}

func (r *repository) Update(ctx context.Context, t *Tenant) error {
	if _, err := uuid.Parse(t.ID); err != nil {
		return fmt.Errorf("update tenant: %w", core.ErrNotFound)
	}

	query := r.db.Rebind(`
		UPDATE tenants
		SET plan = ?, active = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, string(t.Plan), t.Active, t.ID)
	if err != nil {
		return fmt.Errorf("update tenant: %w: %w", core.ErrStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant: %w: %w", core.ErrStore, err)
	}

	if rows == 0 {
		return fmt.Errorf("update tenant: %w", core.ErrNotFound)
	}

	return nil
}
