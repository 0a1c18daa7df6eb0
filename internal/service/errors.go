package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found or hidden by
	// the caller's ownership scope
	ErrNotFound = errors.New("resource not found")

	// ErrNameRequired is returned when a contact's first name is blank after trimming
	ErrNameRequired = errors.New("first name is required")

	// ErrDuplicatePhone is returned when a contact phone is already taken
	ErrDuplicatePhone = errors.New("phone number already in use")

	// ErrInvalidStatus is returned when a status value is outside its closed set
	ErrInvalidStatus = errors.New("invalid status value")

	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthorized is returned when a token is missing, unknown, or expired
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicateUsername is returned when an account username is already taken
	ErrDuplicateUsername = errors.New("username already in use")

	// ErrPasswordTooShort is returned when a new password is below the minimum length
	ErrPasswordTooShort = errors.New("password too short")

	// ErrSelfDelete is returned when an admin tries to delete their own account
	ErrSelfDelete = errors.New("cannot delete own account")

	// ErrInvalidBackup is returned when an uploaded database file fails validation
	ErrInvalidBackup = errors.New("invalid backup file")
)

// isUniqueViolation reports whether an insert or update failed on a
// unique index. The sqlite driver surfaces these as plain errors rather
// than gorm.ErrDuplicatedKey, so the message is checked as well.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
