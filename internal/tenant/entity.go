// AngelaMos | 2026
// entity.go

package tenant

import (
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

type Tenant struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Plan      Plan      `db:"plan"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

// Plan is the subscription tier that determines a tenant's quota ceiling.
type Plan string

const (
	PlanStarter Plan = "starter"
	PlanGrowth  Plan = "growth"
	PlanPro     Plan = "pro"
)

// DefaultPlan is assigned at onboarding.
const DefaultPlan = PlanStarter

func (p Plan) Valid() bool {
	switch p {
	case PlanStarter, PlanGrowth, PlanPro:
		return true
	}
	return false
}

func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("parse plan %q: %w", s, core.ErrInvalidInput)
	}
	return p, nil
}
