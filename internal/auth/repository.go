// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

type Repository interface {
	Create(ctx context.Context, cred *Credential) error
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, cred *Credential) error {
	query := r.db.Rebind(`
		INSERT INTO credentials (email, password_hash, tenant_id, created_at)
		VALUES (?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		cred.Email,
		cred.PasswordHash,
		cred.TenantID,
		cred.CreatedAt,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create credential: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create credential: %w: %w", core.ErrStore, err)
	}

	return nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Credential, error) {
	query := r.db.Rebind(`
		SELECT email, password_hash, tenant_id, created_at
		FROM credentials
		WHERE email = ?`)

	var cred Credential
	err := r.db.GetContext(ctx, &cred, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get credential: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w: %w", core.ErrStore, err)
	}

	return &cred, nil
}

func (r *repository) UpdatePasswordHash(
	ctx context.Context,
	email, passwordHash string,
) error {
	query := r.db.Rebind(`
		UPDATE credentials SET password_hash = ? WHERE email = ?`)

	result, err := r.db.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return fmt.Errorf("update password hash: %w: %w", core.ErrStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password hash: %w: %w", core.ErrStore, err)
	}
	if rows == 0 {
		return fmt.Errorf("update password hash: %w", core.ErrNotFound)
	}

	return nil
}
