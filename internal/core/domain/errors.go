package domain

import "errors"

// Account errors
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidAction      = errors.New("invalid action")
)

// Catalog errors
var (
	ErrCatalogNotConfigured = errors.New("catalog api key not configured")
	ErrMissingGenre         = errors.New("genre parameter is required")
	ErrInvalidGenre         = errors.New("invalid genre id")
	ErrProviderStatus       = errors.New("provider returned non-success status")
	ErrProviderUnavailable  = errors.New("provider unavailable")
)
