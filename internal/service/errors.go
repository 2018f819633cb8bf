package service

import "errors"

// Sentinel errors returned by the services in this package. Store errors such
// as store.ErrUserNotFound are wrapped with %w and pass through unchanged.
var (
	// ErrNotOwned indicates the acting user neither owns the resource nor is
	// an admin. API layer maps this to HTTP 403.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrAdminRequired indicates the operation is reserved for admins.
	// API layer maps this to HTTP 403.
	ErrAdminRequired = errors.New("admin role required")

	// ErrSelfDelete indicates an admin tried to delete their own account.
	// API layer maps this to HTTP 400.
	ErrSelfDelete = errors.New("cannot delete your own account")

	// ErrInvalidCredentials indicates an unknown user name or wrong password.
	// API layer maps this to HTTP 401.
	ErrInvalidCredentials = errors.New("invalid user name or password")

	// ErrInvalidAmount indicates a top-up amount outside the accepted range.
	ErrInvalidAmount = errors.New("amount must be positive, at most 100000 and have at most two decimal places")

	// ErrEmptyUpdate indicates an update request that changes nothing.
	ErrEmptyUpdate = errors.New("at least one field must be provided")
)
