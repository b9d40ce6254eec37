// AngelaMos | 2026
// repository_test.go

package knowledge

import (
	"context"
	"errors"
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

func TestRepository_ReplaceAllAndList(t *testing.T) {
	db := coretest.NewSQLite(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()
	tenantID := seedTenant(t, db.DB)

	require.NoError(t, repo.ReplaceAll(ctx, tenantID, toEntries(tenantID, map[string]EntryValue{
		"hours":    {Value: "9-5", Enabled: true},
		"draft":    {Value: "x", Enabled: false},
		"shipping": {Value: "2 days", Enabled: true},
	})))

	facts, err := repo.ListEnabled(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, Context{
		{Key: "hours", Value: "9-5"},
		{Key: "shipping", Value: "2 days"},
	}, facts)

	all, err := repo.List(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "draft", all[0].Key)
	assert.False(t, all[0].Enabled)
}

func TestRepository_ReplaceAllRemovesOldKeys(t *testing.T) {
	db := coretest.NewSQLite(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()
	tenantID := seedTenant(t, db.DB)

	require.NoError(t, repo.ReplaceAll(ctx, tenantID, toEntries(tenantID, map[string]EntryValue{
		"hours": {Value: "9-5", Enabled: true},
	})))
	require.NoError(t, repo.ReplaceAll(ctx, tenantID, toEntries(tenantID, map[string]EntryValue{
		"hours": {Value: "9-5", Enabled: false},
		"faq":   {Value: "none", Enabled: true},
	})))

	facts, err := repo.ListEnabled(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, Context{{Key: "faq", Value: "none"}}, facts)
}

func TestRepository_TenantsAreIsolated(t *testing.T) {
	db := coretest.NewSQLite(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()
	a := seedTenant(t, db.DB)
	b := seedTenant(t, db.DB)

	require.NoError(t, repo.ReplaceAll(ctx, a, toEntries(a, map[string]EntryValue{
		"hours": {Value: "9-5", Enabled: true},
	})))
	require.NoError(t, repo.ReplaceAll(ctx, b, toEntries(b, map[string]EntryValue{})))

	facts, err := repo.ListEnabled(ctx, a)
	require.NoError(t, err)
	assert.Len(t, facts, 1)

	facts, err = repo.ListEnabled(ctx, b)
	require.NoError(t, err)
	assert.True(t, facts.Empty())
}

func TestRepository_ReplaceAllUnknownTenantFails(t *testing.T) {
	db := coretest.NewSQLite(t)
	repo := NewRepository(db.DB)

	ghost := uuid.New().String()
	err := repo.ReplaceAll(context.Background(), ghost, toEntries(ghost, map[string]EntryValue{
		"hours": {Value: "9-5", Enabled: true},
	}))
	assert.ErrorIs(t, err, core.ErrStore)
}

func TestRepository_ReaderSeesWholeSets(t *testing.T) {
	db := coretest.NewSQLite(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()
	tenantID := seedTenant(t, db.DB)

	setA := map[string]EntryValue{
		"a1": {Value: "1", Enabled: true},
		"a2": {Value: "2", Enabled: true},
	}
	setB := map[string]EntryValue{
		"b1": {Value: "1", Enabled: true},
		"b2": {Value: "2", Enabled: true},
		"b3": {Value: "3", Enabled: true},
	}
	require.NoError(t, repo.ReplaceAll(ctx, tenantID, toEntries(tenantID, setA)))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			set := setA
			if i%2 == 0 {
				set = setB
			}
			assert.NoError(t, repo.ReplaceAll(ctx, tenantID, toEntries(tenantID, set)))
		}
	}()

	for i := 0; i < 50; i++ {
		facts, err := repo.ListEnabled(ctx, tenantID)
		require.NoError(t, err)
		assert.Contains(t, []int{2, 3}, len(facts))
		if len(facts) == 2 {
			assert.Equal(t, "a1", facts[0].Key)
		} else {
			assert.Equal(t, "b1", facts[0].Key)
		}
	}
	wg.Wait()
}

func TestRepository_ReplaceAllRollsBackOnInsertFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewRepository(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM knowledge_entries").
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO knowledge_entries").
		WithArgs("t-1", "a", "1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO knowledge_entries").
		WithArgs("t-1", "b", "2", false).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = repo.ReplaceAll(context.Background(), "t-1", toEntries("t-1", map[string]EntryValue{
		"a": {Value: "1", Enabled: true},
		"b": {Value: "2", Enabled: false},
	}))
	assert.ErrorIs(t, err, core.ErrStore)
	assert.NoError(t, mock.ExpectationsWereMet())
}
