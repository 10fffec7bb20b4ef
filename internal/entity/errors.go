package entity

import "errors"

var (
	// ErrValidation marks malformed or incomplete user input.
	ErrValidation = errors.New("validation error")

	// ErrEmailAlreadyExists surfaces the storage unique constraint on email.
	ErrEmailAlreadyExists = errors.New("lead with this email already exists")

	// ErrLeadNotFound is returned when an id matches no persisted lead.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrUserNotFound is returned when a username matches no user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidSortField rejects sortField values outside the allow-list.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrStorage wraps commit and connection failures from the database.
	ErrStorage = errors.New("storage failure")
)
