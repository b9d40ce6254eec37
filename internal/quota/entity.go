// AngelaMos | 2026
// entity.go

package quota

import (
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/support-gateway/internal/core"
	"github.com/carterperez-dev/support-gateway/internal/tenant"
)

// Period is the accounting window that usage counters are keyed by.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodDaily   Period = "daily"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodMonthly, PeriodDaily:
		return p, nil
	}
	return "", fmt.Errorf("parse period %q: %w", s, core.ErrInvalidInput)
}

// Key derives the canonical, sortable period identifier for now in UTC.
func (p Period) Key(now time.Time) string {
	if p == PeriodDaily {
		return now.UTC().Format("2006-01-02")
	}
	return now.UTC().Format("2006-01")
}

const (
	starterCeiling int64 = 1000
	growthCeiling  int64 = 5000
	proCeiling     int64 = 15000
)

// Ceiling maps every plan to its per-period request allowance. Plans this
// build does not know about get the starter allowance.
func Ceiling(plan tenant.Plan) int64 {
	switch plan {
	case tenant.PlanGrowth:
		return growthCeiling
	case tenant.PlanPro:
		return proCeiling
	default:
		return starterCeiling
	}
}

type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "denied"
}
