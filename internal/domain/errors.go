package domain

import "errors"

// Sentinel errors for store and import operations
var (
	// ErrCategoryNotFound indicates the requested category does not exist
	ErrCategoryNotFound = errors.New("category not found")

	// ErrChannelNotFound indicates the requested channel does not exist
	ErrChannelNotFound = errors.New("channel not found")

	// ErrDuplicateName indicates another category already uses the name
	// under normalized comparison
	ErrDuplicateName = errors.New("category name already in use")

	// ErrEmptyName indicates a blank category name after trimming
	ErrEmptyName = errors.New("category name is empty")

	// ErrInvalidImport indicates an import payload that failed shape validation
	ErrInvalidImport = errors.New("invalid import payload")
)
