package types

import "errors"

// Error kinds returned by store, query and persistence operations.
// Callers test for them with errors.Is; the concrete error usually wraps
// one of these with context.
var (
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrDuplicateReference = errors.New("duplicate reference number")
	ErrNotFound           = errors.New("property not found")
	ErrNoMatch            = errors.New("no matching properties")
	ErrFileUnavailable    = errors.New("file unavailable")
	ErrCorruptData        = errors.New("corrupt data")
	ErrSoldLocked         = errors.New("property is sold and cannot be edited")
	ErrCancelled          = errors.New("operation cancelled")
	ErrInvalidValue       = errors.New("invalid value")
)
