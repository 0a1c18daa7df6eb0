package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/repository"
	"github.com/fardapack/crm-api/internal/testutil"
)

func TestCallRepository_ListWithFilters_NameMatchesContactOrCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCallRepository(db)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, db, "Acme Packaging")
	ada := testutil.CreateContact(t, db, "Ada", "Lovelace", nil, acme)
	grace := testutil.CreateContact(t, db, "Grace", "Hopper", nil, nil)

	now := time.Now().UTC()
	testutil.CreateCall(t, db, ada, now.Add(-1*time.Hour), domain.CallStatusSuccessful)
	testutil.CreateCall(t, db, grace, now.Add(-2*time.Hour), domain.CallStatusFailed)

	t.Run("matches contact full name", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.CallFilters{Name: "Hopper"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Grace Hopper", rows[0].ContactName)
	})

	t.Run("matches company name", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.CallFilters{Name: "Packaging"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Ada Lovelace", rows[0].ContactName)
		assert.Equal(t, "Acme Packaging", rows[0].CompanyName)
	})

	t.Run("status filter", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.CallFilters{
			Statuses: []domain.CallStatus{domain.CallStatusFailed},
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, string(domain.CallStatusFailed), rows[0].Status)
	})
}

func TestCallRepository_ListWithFilters_ScopeViaContactOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCallRepository(db)
	ctx := context.Background()

	alice := testutil.CreateAccount(t, db, "alice", "secret1", domain.RoleAgent)
	mine := testutil.CreateContact(t, db, "Mine", "One", alice, nil)
	other := testutil.CreateContact(t, db, "Other", "Two", nil, nil)

	now := time.Now().UTC()
	testutil.CreateCall(t, db, mine, now, domain.CallStatusSuccessful)
	testutil.CreateCall(t, db, other, now, domain.CallStatusSuccessful)

	rows, err := repo.ListWithFilters(ctx, repository.CallFilters{
		Scope: repository.OwnerScope{EnforcedOwnerID: &alice.ID},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ContactID)
}

func TestCallRepository_Counts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCallRepository(db)
	ctx := context.Background()

	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", nil, nil)

	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	testutil.CreateCall(t, db, contact, now.Add(-time.Minute), domain.CallStatusSuccessful)
	testutil.CreateCall(t, db, contact, now.Add(-2*time.Minute), domain.CallStatusFailed)
	testutil.CreateCall(t, db, contact, startOfDay.AddDate(0, 0, -3), domain.CallStatusSuccessful)

	today, err := repo.CountSince(ctx, repository.OwnerScope{}, startOfDay)
	require.NoError(t, err)
	assert.Equal(t, int64(2), today)

	successfulToday, err := repo.CountSinceWithStatus(ctx, repository.OwnerScope{}, startOfDay, domain.CallStatusSuccessful)
	require.NoError(t, err)
	assert.Equal(t, int64(1), successfulToday)

	week, err := repo.CountSince(ctx, repository.OwnerScope{}, startOfDay.AddDate(0, 0, -6))
	require.NoError(t, err)
	assert.Equal(t, int64(3), week)
}

func TestCallRepository_Create_RejectsUnknownStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCallRepository(db)
	ctx := context.Background()

	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", nil, nil)

	err := repo.Create(ctx, &domain.Call{
		ContactID: contact.ID,
		CalledAt:  time.Now().UTC(),
		Status:    domain.CallStatus("bogus"),
	})
	assert.Error(t, err, "check constraint should reject unknown status values")
}
