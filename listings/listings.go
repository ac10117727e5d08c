// Package listings is a bounded record store for real-estate listings.
// The collection lives in memory and is mirrored after every change to
// a pair of recovery files (delimited text and binary), so a restarted
// process resumes where the last one stopped.
//
// This package re-exports the pieces most callers need; the
// subpackages hold the implementation.
package listings

import (
	"github.com/arthur-debert/listings/listings/query"
	"github.com/arthur-debert/listings/listings/store"
)

// Service is the record store with recovery sync
type Service = store.Service

// Option configures Open
type Option = store.Option

// Change is a typed field assignment passed to Service.Update
type Change = store.Change

// Outcome reports what an update did
type Outcome = store.Outcome

const (
	Changed   = store.Changed
	Unchanged = store.Unchanged
)

// Open creates a Service for cfg and loads the recovery snapshot
func Open(cfg Config, opts ...Option) (*Service, error) {
	return store.Open(cfg, opts...)
}

// Option constructors
var (
	WithFileSystem      = store.WithFileSystem
	WithFileLockFactory = store.WithFileLockFactory
	WithLogger          = store.WithLogger
	WithConfirmer       = store.WithConfirmer
)

// Field change constructors
var (
	SetRef        = store.SetRef
	SetBroker     = store.SetBroker
	SetType       = store.SetType
	SetArea       = store.SetArea
	SetExposition = store.SetExposition
	SetPrice      = store.SetPrice
	SetTotalArea  = store.SetTotalArea
	SetRooms      = store.SetRooms
	SetFloor      = store.SetFloor
	SetStatus     = store.SetStatus
	ParseChange   = store.ParseChange
)

// Queries over a slice of records; none of them modifies its input
var (
	SortByPrice            = query.SortByPrice
	ByBroker               = query.ByBroker
	ByRooms                = query.ByRooms
	FilterSold             = query.Sold
	LargestArea            = query.LargestArea
	MostExpensiveInArea    = query.MostExpensiveInArea
	AveragePriceInArea     = query.AveragePriceInArea
	SoldPercentageByBroker = query.SoldPercentageByBroker
)

// AreaAverage is the result of AveragePriceInArea
type AreaAverage = query.AreaAverage

// BrokerSales is one row of SoldPercentageByBroker
type BrokerSales = query.BrokerSales
