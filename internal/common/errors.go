// Package common defines shared sentinel errors used across clipshelf layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Caller errors.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation error")
)
