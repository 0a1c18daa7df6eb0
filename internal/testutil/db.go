// Package testutil provides shared database helpers for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/database"
	"github.com/fardapack/crm-api/internal/domain"
)

// SetupTestDB opens a private in-memory SQLite database with the full
// schema migrated. The pool is pinned to a single connection so the
// in-memory database is shared across all queries in the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateAccount inserts an account with a bcrypt hash of the given password
func CreateAccount(t *testing.T, db *gorm.DB, username, password string, role domain.Role) *domain.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	account := &domain.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

// CreateCompany inserts a company with default level and status
func CreateCompany(t *testing.T, db *gorm.DB, name string) *domain.Company {
	t.Helper()

	company := &domain.Company{
		Name:   name,
		Level:  domain.LevelNone,
		Status: domain.CompanyStatusNone,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateContact inserts a contact owned by the given account (nil means
// unassigned), optionally attached to a company.
func CreateContact(t *testing.T, db *gorm.DB, firstName, lastName string, owner *domain.Account, company *domain.Company) *domain.Contact {
	t.Helper()

	contact := &domain.Contact{
		FirstName: firstName,
		LastName:  lastName,
		FullName:  domain.DeriveFullName(firstName, lastName),
		Status:    domain.ContactStatusNone,
		Level:     domain.LevelNone,
	}
	if owner != nil {
		contact.OwnerID = &owner.ID
	}
	if company != nil {
		contact.CompanyID = &company.ID
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

// CreateCall inserts a call against a contact at the given time
func CreateCall(t *testing.T, db *gorm.DB, contact *domain.Contact, calledAt time.Time, status domain.CallStatus) *domain.Call {
	t.Helper()

	call := &domain.Call{
		ContactID: contact.ID,
		CalledAt:  calledAt,
		Status:    status,
	}
	require.NoError(t, db.Create(call).Error)
	return call
}

// CreateFollowUp inserts a follow-up against a contact
func CreateFollowUp(t *testing.T, db *gorm.DB, contact *domain.Contact, dueAt time.Time, status domain.FollowUpStatus) *domain.FollowUp {
	t.Helper()

	followUp := &domain.FollowUp{
		ContactID: contact.ID,
		Title:     "call back",
		DueAt:     dueAt,
		Status:    status,
	}
	require.NoError(t, db.Create(followUp).Error)
	return followUp
}

// CreateProduct inserts a product
func CreateProduct(t *testing.T, db *gorm.DB, category, name string) *domain.Product {
	t.Helper()

	product := &domain.Product{
		Category: category,
		Name:     name,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// CallerFor builds the resolved caller identity for an account
func CallerFor(account *domain.Account) *auth.Caller {
	return &auth.Caller{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
	}
}
