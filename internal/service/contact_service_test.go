package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/repository"
	"github.com/fardapack/crm-api/internal/service"
	"github.com/fardapack/crm-api/internal/testutil"
)

func newContactService(db *gorm.DB) *service.ContactService {
	return service.NewContactService(
		repository.NewContactRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewCallRepository(db),
		repository.NewFollowUpRepository(db),
		zap.NewNop(),
	)
}

func TestContactService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)
	agent := testutil.CreateAccount(t, db, "agent", "secret1", domain.RoleAgent)

	t.Run("trims names and derives full name", func(t *testing.T) {
		dto, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{
			FirstName: "  Ada ",
			LastName:  " Lovelace ",
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada", dto.FirstName)
		assert.Equal(t, "Ada Lovelace", dto.FullName)
		assert.Equal(t, domain.ContactStatusNone, dto.Status)
	})

	t.Run("blank first name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{
			FirstName: "   ",
		})
		assert.ErrorIs(t, err, service.ErrNameRequired)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{
			FirstName: "Bad",
			Status:    "bogus",
		})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("non-admin always owns what they create", func(t *testing.T) {
		dto, err := svc.Create(ctx, testutil.CallerFor(agent), &domain.CreateContactRequest{
			FirstName: "Grace",
			OwnerID:   &admin.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, dto.OwnerID)
		assert.Equal(t, agent.ID, *dto.OwnerID)
	})

	t.Run("admin may assign any owner", func(t *testing.T) {
		dto, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{
			FirstName: "Margaret",
			OwnerID:   &agent.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, dto.OwnerID)
		assert.Equal(t, agent.ID, *dto.OwnerID)
	})
}

func TestContactService_Create_DuplicatePhone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)

	_, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{
		FirstName: "Ada",
		Phone:     "09120000001",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{
		FirstName: "Grace",
		Phone:     "09120000001",
	})
	assert.ErrorIs(t, err, service.ErrDuplicatePhone)

	// Empty phones never collide
	_, err = svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{FirstName: "One"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{FirstName: "Two"})
	require.NoError(t, err)
}

func TestContactService_Create_CompanyByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)

	first, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{
		FirstName:   "Ada",
		CompanyName: "Acme",
	})
	require.NoError(t, err)
	require.NotNil(t, first.CompanyID)

	// Same name resolves to the same company instead of creating another
	second, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateContactRequest{
		FirstName:   "Grace",
		CompanyName: "Acme",
	})
	require.NoError(t, err)
	require.NotNil(t, second.CompanyID)
	assert.Equal(t, *first.CompanyID, *second.CompanyID)

	var count int64
	require.NoError(t, db.Model(&domain.Company{}).Where("name = ?", "Acme").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestContactService_Update_PartialPatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", nil, nil)

	t.Run("supplying one name part recomputes full name", func(t *testing.T) {
		newLast := "Byron"
		dto, err := svc.Update(ctx, testutil.CallerFor(admin), contact.ID, &domain.UpdateContactRequest{
			LastName: &newLast,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada", dto.FirstName)
		assert.Equal(t, "Byron", dto.LastName)
		assert.Equal(t, "Ada Byron", dto.FullName)
	})

	t.Run("empty patch is a no-op success", func(t *testing.T) {
		dto, err := svc.Update(ctx, testutil.CallerFor(admin), contact.ID, &domain.UpdateContactRequest{})
		require.NoError(t, err)
		assert.Equal(t, "Ada Byron", dto.FullName)
	})

	t.Run("blanking the first name is rejected", func(t *testing.T) {
		blank := "  "
		_, err := svc.Update(ctx, testutil.CallerFor(admin), contact.ID, &domain.UpdateContactRequest{
			FirstName: &blank,
		})
		assert.ErrorIs(t, err, service.ErrNameRequired)
	})

	t.Run("unknown id reads as not found", func(t *testing.T) {
		_, err := svc.Update(ctx, testutil.CallerFor(admin), 99999, &domain.UpdateContactRequest{})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestContactService_OwnershipHidesRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	ctx := context.Background()

	alice := testutil.CreateAccount(t, db, "alice", "secret1", domain.RoleAgent)
	bob := testutil.CreateAccount(t, db, "bob", "secret1", domain.RoleAgent)
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", alice, nil)

	t.Run("owner can read", func(t *testing.T) {
		dto, err := svc.Get(ctx, testutil.CallerFor(alice), contact.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", dto.FullName)
	})

	t.Run("other agents see not found", func(t *testing.T) {
		_, err := svc.Get(ctx, testutil.CallerFor(bob), contact.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)

		note := "sneaky"
		_, err = svc.Update(ctx, testutil.CallerFor(bob), contact.ID, &domain.UpdateContactRequest{Note: &note})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestContactService_Profile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)
	company := testutil.CreateCompany(t, db, "Acme")
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", nil, company)
	colleague := testutil.CreateContact(t, db, "Grace", "Hopper", nil, company)

	profile, err := svc.Profile(ctx, testutil.CallerFor(admin), contact.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", profile.Contact.FullName)
	assert.Empty(t, profile.Calls)
	assert.Empty(t, profile.FollowUps)
	require.Len(t, profile.Colleagues, 1)
	assert.Equal(t, colleague.ID, profile.Colleagues[0].ID)
}
