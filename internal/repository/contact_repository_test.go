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

func TestContactRepository_ListWithFilters_Scope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactRepository(db)
	ctx := context.Background()

	alice := testutil.CreateAccount(t, db, "alice", "secret1", domain.RoleAgent)
	bob := testutil.CreateAccount(t, db, "bob", "secret1", domain.RoleAgent)

	testutil.CreateContact(t, db, "Ada", "Lovelace", alice, nil)
	testutil.CreateContact(t, db, "Grace", "Hopper", bob, nil)
	testutil.CreateContact(t, db, "Orphan", "Record", nil, nil)

	t.Run("unrestricted scope sees everything", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.ContactFilters{})
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("enforced owner sees only own rows", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.ContactFilters{
			Scope: repository.OwnerScope{EnforcedOwnerID: &alice.ID},
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Ada Lovelace", rows[0].FullName)
		assert.Equal(t, "alice", rows[0].OwnerName)
	})

	t.Run("owner id narrowing", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.ContactFilters{
			Scope: repository.OwnerScope{OwnerIDs: []uint{alice.ID, bob.ID}},
		})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}

func TestContactRepository_ListWithFilters_NameFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactRepository(db)
	ctx := context.Background()

	testutil.CreateContact(t, db, "Ada", "Lovelace", nil, nil)
	testutil.CreateContact(t, db, "Grace", "Hopper", nil, nil)
	testutil.CreateContact(t, db, "Adam", "Hopkins", nil, nil)

	t.Run("first name substring", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.ContactFilters{FirstName: "Ada"})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.ElementsMatch(t,
			[]string{"Ada Lovelace", "Adam Hopkins"},
			[]string{rows[0].FullName, rows[1].FullName})
	})

	t.Run("last name substring", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.ContactFilters{LastName: "Hop"})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.ElementsMatch(t,
			[]string{"Grace Hopper", "Adam Hopkins"},
			[]string{rows[0].FullName, rows[1].FullName})
	})

	t.Run("first and last combine", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.ContactFilters{
			FirstName: "Ada",
			LastName:  "Hop",
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Adam Hopkins", rows[0].FullName)
	})

	t.Run("full name substring spans both parts", func(t *testing.T) {
		rows, err := repo.ListWithFilters(ctx, repository.ContactFilters{Name: "ce Hop"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Grace Hopper", rows[0].FullName)
	})
}

func TestContactRepository_ListWithFilters_DerivedColumns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactRepository(db)
	ctx := context.Background()

	company := testutil.CreateCompany(t, db, "Acme")
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", nil, company)
	quiet := testutil.CreateContact(t, db, "Grace", "Hopper", nil, nil)

	now := time.Now().UTC()
	testutil.CreateCall(t, db, contact, now.Add(-48*time.Hour), domain.CallStatusFailed)
	testutil.CreateCall(t, db, contact, now.Add(-1*time.Hour), domain.CallStatusSuccessful)
	testutil.CreateFollowUp(t, db, contact, now.Add(24*time.Hour), domain.FollowUpStatusInProgress)

	rows, err := repo.ListWithFilters(ctx, repository.ContactFilters{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uint]repository.ContactReportRow{}
	for _, row := range rows {
		byID[row.ID] = row
	}

	withCalls := byID[contact.ID]
	assert.Equal(t, "Acme", withCalls.CompanyName)
	assert.Equal(t, string(domain.CallStatusSuccessful), withCalls.LastCallStatus)
	assert.True(t, withCalls.HasOpenFollowUp)

	lastCall, ok := repository.ParseStoredTime(withCalls.LastCallAt)
	require.True(t, ok, "last call column should parse: %q", withCalls.LastCallAt)
	assert.WithinDuration(t, now.Add(-1*time.Hour), lastCall, 2*time.Second)

	noCalls := byID[quiet.ID]
	assert.Empty(t, noCalls.LastCallAt)
	assert.False(t, noCalls.HasOpenFollowUp)
}

func TestContactRepository_ListWithFilters_LastCallRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactRepository(db)
	ctx := context.Background()

	recent := testutil.CreateContact(t, db, "Recent", "Caller", nil, nil)
	stale := testutil.CreateContact(t, db, "Stale", "Caller", nil, nil)
	testutil.CreateContact(t, db, "Never", "Called", nil, nil)

	now := time.Now().UTC()
	testutil.CreateCall(t, db, recent, now.Add(-2*time.Hour), domain.CallStatusSuccessful)
	testutil.CreateCall(t, db, stale, now.AddDate(0, 0, -30), domain.CallStatusSuccessful)

	from := now.AddDate(0, 0, -7)
	rows, err := repo.ListWithFilters(ctx, repository.ContactFilters{
		LastCall: repository.DateRange{From: &from},
	})
	require.NoError(t, err)

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.FullName)
	}
	assert.Contains(t, names, "Recent Caller")
	assert.NotContains(t, names, "Stale Caller")
	// Contacts without any call have an empty stored value and pass through
	assert.Contains(t, names, "Never Called")
}

func TestContactRepository_PhoneExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactRepository(db)
	ctx := context.Background()

	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", nil, nil)
	require.NoError(t, db.Model(contact).Update("phone", "09120000001").Error)

	taken, err := repo.PhoneExists(ctx, "09120000001", nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.PhoneExists(ctx, "09120000002", nil)
	require.NoError(t, err)
	assert.False(t, taken)

	// The owning contact is excluded when updating itself
	taken, err = repo.PhoneExists(ctx, "09120000001", &contact.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestContactRepository_BulkReassignOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactRepository(db)
	ctx := context.Background()

	alice := testutil.CreateAccount(t, db, "alice", "secret1", domain.RoleAgent)
	bob := testutil.CreateAccount(t, db, "bob", "secret1", domain.RoleAgent)

	mine := testutil.CreateContact(t, db, "Mine", "One", alice, nil)
	theirs := testutil.CreateContact(t, db, "Theirs", "Two", bob, nil)

	t.Run("restricted scope only moves owned rows", func(t *testing.T) {
		updated, err := repo.BulkReassignOwner(ctx,
			[]uint{mine.ID, theirs.ID}, &bob.ID,
			repository.OwnerScope{EnforcedOwnerID: &alice.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated)

		var reloaded domain.Contact
		require.NoError(t, db.First(&reloaded, theirs.ID).Error)
		require.NotNil(t, reloaded.OwnerID)
		assert.Equal(t, bob.ID, *reloaded.OwnerID)
	})

	t.Run("unrestricted scope can unassign", func(t *testing.T) {
		updated, err := repo.BulkReassignOwner(ctx,
			[]uint{mine.ID}, nil, repository.OwnerScope{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated)

		var reloaded domain.Contact
		require.NoError(t, db.First(&reloaded, mine.ID).Error)
		assert.Nil(t, reloaded.OwnerID)
	})

	t.Run("empty id list is a no-op", func(t *testing.T) {
		updated, err := repo.BulkReassignOwner(ctx, nil, &alice.ID, repository.OwnerScope{})
		require.NoError(t, err)
		assert.Zero(t, updated)
	})
}
