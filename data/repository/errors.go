package repository

import "errors"

// Data layer sentinel errors.
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrVersionConflict = errors.New("version conflict")
)
