// AngelaMos | 2026
// service.go

package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateTenant onboards a business on the lowest plan, active.
func (s *Service) CreateTenant(ctx context.Context, name string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("create tenant: empty name: %w", core.ErrInvalidInput)
	}

	t := &Tenant{
		ID:        uuid.New().String(),
		Name:      name,
		Plan:      DefaultPlan,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveTenantForUser follows the credential to its tenant.
func (s *Service) ResolveTenantForUser(
	ctx context.Context,
	email string,
) (string, error) {
	return s.repo.GetIDByEmail(ctx, normalizeEmail(email))
}

// UpdateTenant is the administrative path for changing plan and active.
func (s *Service) UpdateTenant(
	ctx context.Context,
	id string,
	req UpdateTenantRequest,
) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Plan != nil {
		plan, err := ParsePlan(*req.Plan)
		if err != nil {
			return nil, fmt.Errorf("update tenant: %w", err)
		}
		t.Plan = plan
	}

	if req.Active != nil {
		t.Active = *req.Active
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
