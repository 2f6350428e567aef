package services

import "errors"

var (
	// ErrInvalidInput marks requests missing a required field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUserNotFound is returned when no user has the requested username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameExists is returned when a rename collides with another user.
	ErrUsernameExists = errors.New("username already exists")
)
