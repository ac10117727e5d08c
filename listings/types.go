package listings

import "github.com/arthur-debert/listings/types"

// Property is an alias for types.Property
type Property = types.Property

// Status is an alias for types.Status
type Status = types.Status

const (
	Sold      = types.Sold
	Reserved  = types.Reserved
	Available = types.Available
)

// Config is an alias for types.Config
type Config = types.Config

// DefaultConfig returns the default file layout and policies
func DefaultConfig() Config {
	return types.DefaultConfig()
}

// Confirmer approves destructive actions
type Confirmer = types.Confirmer

// Error kinds, for use with errors.Is
var (
	ErrCapacityExceeded   = types.ErrCapacityExceeded
	ErrDuplicateReference = types.ErrDuplicateReference
	ErrNotFound           = types.ErrNotFound
	ErrNoMatch            = types.ErrNoMatch
	ErrFileUnavailable    = types.ErrFileUnavailable
	ErrCorruptData        = types.ErrCorruptData
	ErrSoldLocked         = types.ErrSoldLocked
	ErrCancelled          = types.ErrCancelled
	ErrInvalidValue       = types.ErrInvalidValue
)
