// AngelaMos | 2026
// quota_test.go

package quota

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/support-gateway/internal/core"
	"github.com/carterperez-dev/support-gateway/internal/core/coretest"
	"github.com/carterperez-dev/support-gateway/internal/tenant"
)

var march14 = time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)

func TestPeriod_Key(t *testing.T) {
	assert.Equal(t, "2026-03", PeriodMonthly.Key(march14))
	assert.Equal(t, "2026-03-14", PeriodDaily.Key(march14))

	// 23:30 UTC is already the next day in UTC+2
	local := march14.In(time.FixedZone("UTC+2", 2*60*60))
	assert.Equal(t, "2026-03-14", PeriodDaily.Key(local))

	assert.Equal(t, "2026-04", PeriodMonthly.Key(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" Daily ")
	require.NoError(t, err)
	assert.Equal(t, PeriodDaily, p)

	_, err = ParsePeriod("weekly")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCeiling(t *testing.T) {
	assert.Equal(t, int64(1000), Ceiling(tenant.PlanStarter))
	assert.Equal(t, int64(5000), Ceiling(tenant.PlanGrowth))
	assert.Equal(t, int64(15000), Ceiling(tenant.PlanPro))
	assert.Equal(t, int64(1000), Ceiling(tenant.Plan("enterprise")))
	assert.Equal(t, int64(1000), Ceiling(""))
}

type fixedRepo struct {
	count int64
}

func (f *fixedRepo) Count(context.Context, string, string) (int64, error) {
	return f.count, nil
}

func (f *fixedRepo) Increment(context.Context, string, string) (int64, error) {
	f.count++
	return f.count, nil
}

func TestLedger_AdmitBoundary(t *testing.T) {
	tests := []struct {
		name  string
		plan  tenant.Plan
		count int64
		want  Decision
	}{
		{"fresh period", tenant.PlanStarter, 0, Allowed},
		{"one below ceiling", tenant.PlanStarter, 999, Allowed},
		{"at ceiling", tenant.PlanStarter, 1000, Denied},
		{"over ceiling", tenant.PlanStarter, 1001, Denied},
		{"growth below", tenant.PlanGrowth, 4999, Allowed},
		{"growth at", tenant.PlanGrowth, 5000, Denied},
		{"pro at", tenant.PlanPro, 15000, Denied},
		{"unknown plan uses starter", tenant.Plan("legacy"), 1000, Denied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(&fixedRepo{count: tt.count}, PeriodMonthly)

			got, err := l.Admit(context.Background(), "t-1", tt.plan)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedger_Usage(t *testing.T) {
	l := NewLedger(&fixedRepo{count: 1200}, PeriodMonthly)
	l.now = func() time.Time { return march14 }

	u, err := l.Usage(context.Background(), "t-1", tenant.PlanStarter)
	require.NoError(t, err)
	assert.Equal(t, &UsageResponse{
		Period:    "2026-03",
		Count:     1200,
		Ceiling:   1000,
		Remaining: 0,
		Plan:      "starter",
	}, u)
}

func seedTenant(t *testing.T, db *sqlx.DB) string {
	t.Helper()
	id := uuid.New().String()
	require.NoError(t, tenant.NewRepository(db).Create(context.Background(), &tenant.Tenant{
		ID:        id,
		Name:      "Acme",
		Plan:      tenant.PlanStarter,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}))
	return id
}

func TestRepository_IncrementCreatesThenAdds(t *testing.T) {
	db := coretest.NewSQLite(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()
	tenantID := seedTenant(t, db.DB)

	count, err := repo.Count(ctx, tenantID, "2026-03")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.Increment(ctx, tenantID, "2026-03")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.Increment(ctx, tenantID, "2026-03")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.Count(ctx, tenantID, "2026-04")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLedger_ConcurrentRecordUsageLosesNothing(t *testing.T) {
	db := coretest.NewSQLite(t)
	ledger := NewLedger(NewRepository(db.DB), PeriodMonthly)
	ledger.now = func() time.Time { return march14 }
	ctx := context.Background()
	tenantID := seedTenant(t, db.DB)

	_, err := ledger.RecordUsage(ctx, tenantID)
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := ledger.RecordUsage(ctx, tenantID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := NewRepository(db.DB).Count(ctx, tenantID, "2026-03")
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), count)
}

func TestRepository_IncrementIsOneStatement(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewRepository(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectQuery(`INSERT INTO usage_counters .* ON CONFLICT \(tenant_id, period_key\)\s+DO UPDATE SET count = usage_counters.count \+ 1\s+RETURNING count`).
		WithArgs("t-1", "2026-03").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.Increment(context.Background(), "t-1", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
