package errors

import "errors"

var (
	ErrNotFound = errors.New("room not found")

	ErrDuplicate = errors.New("room name already taken")
)
