package services

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation wraps input problems that map to 400 responses.
	ErrValidation = errors.New("validation failed")
	// ErrConflict wraps uniqueness violations that map to 409 responses.
	ErrConflict = errors.New("conflict")
	// ErrInvalidPassword is returned by Login when the email exists but the password does not match.
	ErrInvalidPassword = errors.New("invalid password")
)
