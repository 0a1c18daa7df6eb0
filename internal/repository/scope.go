package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/auth"
)

// OwnerScope is the effective ownership restriction for a listing or bulk
// mutation. EnforcedOwnerID is set for non-admin callers and is always
// ANDed into the predicate; OwnerIDs is an admin-supplied narrowing and is
// only applied when non-empty.
type OwnerScope struct {
	EnforcedOwnerID *uint
	OwnerIDs        []uint
}

// ResolveOwnerScope computes the scope for a caller. Admins keep whatever
// owner filter they asked for; everyone else is pinned to their own
// account regardless of the request.
func ResolveOwnerScope(caller *auth.Caller, requestedOwnerIDs []uint) OwnerScope {
	if caller.IsAdmin() {
		return OwnerScope{OwnerIDs: requestedOwnerIDs}
	}
	id := caller.AccountID
	return OwnerScope{EnforcedOwnerID: &id}
}

// Apply adds the scope predicate against the given owner column
func (s OwnerScope) Apply(query *gorm.DB, ownerColumn string) *gorm.DB {
	if s.EnforcedOwnerID != nil {
		return query.Where(ownerColumn+" = ?", *s.EnforcedOwnerID)
	}
	if len(s.OwnerIDs) > 0 {
		return query.Where(ownerColumn+" IN ?", s.OwnerIDs)
	}
	return query
}

// Restricted reports whether the scope pins rows to a single owner
func (s OwnerScope) Restricted() bool {
	return s.EnforcedOwnerID != nil
}

// DateRange is an inclusive calendar-date range filter. From is compared
// from midnight, To up to but excluding the following midnight.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsZero reports whether no bound is set
func (d DateRange) IsZero() bool {
	return d.From == nil && d.To == nil
}

// Contains reports whether t falls inside the range
func (d DateRange) Contains(t time.Time) bool {
	if d.From != nil && t.Before(startOfDay(*d.From)) {
		return false
	}
	if d.To != nil && !t.Before(startOfDay(*d.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// Apply adds the range predicate against the given timestamp column
func (d DateRange) Apply(query *gorm.DB, column string) *gorm.DB {
	if d.From != nil {
		query = query.Where(column+" >= ?", startOfDay(*d.From))
	}
	if d.To != nil {
		query = query.Where(column+" < ?", startOfDay(*d.To).AddDate(0, 0, 1))
	}
	return query
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// storedTimeLayouts are the formats timestamps come back in when read out
// of correlated subquery columns, which carry no declared column type.
var storedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseStoredTime parses a timestamp string as stored by the driver.
// Returns false when the value is empty or unparsable.
func ParseStoredTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MatchesStoredRange checks a stored timestamp string against a range.
// Unparsable values pass the filter so that a bad row is surfaced rather
// than silently hidden.
func MatchesStoredRange(stored string, r DateRange) bool {
	if r.IsZero() {
		return true
	}
	t, ok := ParseStoredTime(stored)
	if !ok {
		return true
	}
	return r.Contains(t)
}
