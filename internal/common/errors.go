package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Post errors
	ErrPostNotFound = errors.New("post not found")

	// Publish wizard errors
	ErrDraftNotFound   = errors.New("draft not found")     // confirm step entered without a compose step
	ErrSubmitInFlight  = errors.New("submit in flight")    // re-entrant submit of the same draft
	ErrUploadFailed    = errors.New("image upload failed") // aborts the whole submission
	ErrNoAttachedFiles = errors.New("no attached files")

	// Message errors
	ErrMessageToSelf = errors.New("cannot message yourself")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
