// AngelaMos | 2026
// dto.go

package tenant

import (
	"time"
)

type CreateTenantRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

type UpdateTenantRequest struct {
	Plan   *string `json:"plan,omitempty"   validate:"omitempty,oneof=starter growth pro"`
	Active *bool   `json:"active,omitempty"`
}

type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func ToTenantResponse(t *Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Plan:      string(t.Plan),
		Active:    t.Active,
		CreatedAt: t.CreatedAt,
	}
}
