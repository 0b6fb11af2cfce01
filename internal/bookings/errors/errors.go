package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrTimeConflict = errors.New("booking window overlaps an active booking")
)
