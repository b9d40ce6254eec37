// AngelaMos | 2026
// service.go

package quota

import (
	"context"
	"time"

	"github.com/carterperez-dev/support-gateway/internal/tenant"
)

// Ledger decides admission against plan ceilings and records served
// requests. Admit is a point-in-time read, so concurrent requests near the
// ceiling may overshoot it slightly. RecordUsage never loses an increment.
type Ledger struct {
	repo   Repository
	period Period
	now    func() time.Time
}

func NewLedger(repo Repository, period Period) *Ledger {
	return &Ledger{repo: repo, period: period, now: time.Now}
}

func (l *Ledger) CurrentPeriodKey() string {
	return l.period.Key(l.now())
}

func (l *Ledger) Admit(
	ctx context.Context,
	tenantID string,
	plan tenant.Plan,
) (Decision, error) {
	count, err := l.repo.Count(ctx, tenantID, l.CurrentPeriodKey())
	if err != nil {
		return Denied, err
	}

	if count < Ceiling(plan) {
		return Allowed, nil
	}
	return Denied, nil
}

// RecordUsage charges one served request to the current period.
func (l *Ledger) RecordUsage(ctx context.Context, tenantID string) (int64, error) {
	return l.repo.Increment(ctx, tenantID, l.CurrentPeriodKey())
}

func (l *Ledger) Usage(
	ctx context.Context,
	tenantID string,
	plan tenant.Plan,
) (*UsageResponse, error) {
	key := l.CurrentPeriodKey()

	count, err := l.repo.Count(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}

	ceiling := Ceiling(plan)
	remaining := ceiling - count
	if remaining < 0 {
		remaining = 0
	}

	return &UsageResponse{
		Period:    key,
		Count:     count,
		Ceiling:   ceiling,
		Remaining: remaining,
		Plan:      string(plan),
	}, nil
}
