package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/repository"
)

func TestResolveOwnerScope(t *testing.T) {
	admin := &auth.Caller{AccountID: 1, Username: "admin", Role: domain.RoleAdmin}
	agent := &auth.Caller{AccountID: 2, Username: "agent", Role: domain.RoleAgent}

	t.Run("admin keeps requested filter", func(t *testing.T) {
		scope := repository.ResolveOwnerScope(admin, []uint{3, 4})
		assert.Nil(t, scope.EnforcedOwnerID)
		assert.Equal(t, []uint{3, 4}, scope.OwnerIDs)
		assert.False(t, scope.Restricted())
	})

	t.Run("admin without filter is unrestricted", func(t *testing.T) {
		scope := repository.ResolveOwnerScope(admin, nil)
		assert.Nil(t, scope.EnforcedOwnerID)
		assert.Empty(t, scope.OwnerIDs)
	})

	t.Run("agent is pinned to own account", func(t *testing.T) {
		scope := repository.ResolveOwnerScope(agent, []uint{3, 4})
		require.NotNil(t, scope.EnforcedOwnerID)
		assert.Equal(t, uint(2), *scope.EnforcedOwnerID)
		assert.Empty(t, scope.OwnerIDs)
		assert.True(t, scope.Restricted())
	})
}

func TestDateRangeContains(t *testing.T) {
	day := func(s string) *time.Time {
		parsed, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return &parsed
	}

	tests := []struct {
		name  string
		r     repository.DateRange
		t     time.Time
		wants bool
	}{
		{
			name:  "empty range matches everything",
			r:     repository.DateRange{},
			t:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			wants: true,
		},
		{
			name:  "inside range",
			r:     repository.DateRange{From: day("2024-03-01"), To: day("2024-03-10")},
			t:     time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
			wants: true,
		},
		{
			name:  "to bound is inclusive through end of day",
			r:     repository.DateRange{To: day("2024-03-10")},
			t:     time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC),
			wants: true,
		},
		{
			name:  "day after to bound is out",
			r:     repository.DateRange{To: day("2024-03-10")},
			t:     time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			wants: false,
		},
		{
			name:  "before from bound is out",
			r:     repository.DateRange{From: day("2024-03-01")},
			t:     time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC),
			wants: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, tt.r.Contains(tt.t))
		})
	}
}

func TestParseStoredTime(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		wantOK bool
	}{
		{"driver format with offset", "2024-03-05 14:30:00.123456789+00:00", true},
		{"rfc3339", "2024-03-05T14:30:00Z", true},
		{"plain datetime", "2024-03-05 14:30:00", true},
		{"date only", "2024-03-05", true},
		{"empty", "", false},
		{"garbage", "not-a-time", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := repository.ParseStoredTime(tt.stored)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestMatchesStoredRange(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	r := repository.DateRange{From: &from}

	assert.True(t, repository.MatchesStoredRange("2024-03-05 10:00:00", r))
	assert.False(t, repository.MatchesStoredRange("2024-02-01 10:00:00", r))

	// Unparsable values pass the filter rather than vanishing
	assert.True(t, repository.MatchesStoredRange("garbage", r))
	assert.True(t, repository.MatchesStoredRange("", r))
}
