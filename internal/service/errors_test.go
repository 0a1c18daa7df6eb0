package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/testutil"
)

func TestIsUniqueViolation(t *testing.T) {
	db := testutil.SetupTestDB(t)

	first := &domain.Account{Username: "dup", PasswordHash: "x", Role: domain.RoleAgent}
	require.NoError(t, db.Create(first).Error)

	// The error the driver raises when an insert races past the
	// username pre-check and lands on the unique index
	err := db.Create(&domain.Account{Username: "dup", PasswordHash: "x", Role: domain.RoleAgent}).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	assert.False(t, isUniqueViolation(errors.New("disk I/O error")))
}
