// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// Credential binds a login email to a tenant. Email is unique system-wide.
type Credential struct {
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	TenantID     string    `db:"tenant_id"`
	CreatedAt    time.Time `db:"created_at"`
}
