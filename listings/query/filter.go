// Package query implements the read-only operations over a slice of
// properties: price ordering, filters and aggregate reports. Nothing in
// this package mutates its input except SortByPrice, which sorts the
// slice it is given.
package query

import (
	"fmt"

	"github.com/arthur-debert/listings/types"
)

// filter returns a fresh slice holding the records accepted by keep.
func filter(ps []types.Property, keep func(types.Property) bool) []types.Property {
	var out []types.Property
	for _, p := range ps {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// ByBroker returns the properties listed by broker (exact match), sorted
// by price in the requested direction.
func ByBroker(ps []types.Property, broker string, ascending bool) ([]types.Property, error) {
	out := filter(ps, func(p types.Property) bool { return p.Broker == broker })
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: broker %q", types.ErrNoMatch, broker)
	}
	SortByPrice(out, ascending)
	return out, nil
}

// ByRooms returns the properties with exactly rooms rooms, most
// expensive first.
func ByRooms(ps []types.Property, rooms int) ([]types.Property, error) {
	out := filter(ps, func(p types.Property) bool { return p.Rooms == rooms })
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %d rooms", types.ErrNoMatch, rooms)
	}
	SortByPrice(out, false)
	return out, nil
}

// Sold returns the sold properties in collection order.
func Sold(ps []types.Property) ([]types.Property, error) {
	out := filter(ps, func(p types.Property) bool { return p.Status == types.Sold })
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no sold properties", types.ErrNoMatch)
	}
	return out, nil
}

// LargestArea returns every property whose total area equals the
// maximum total area of the collection, in collection order.
func LargestArea(ps []types.Property) ([]types.Property, error) {
	if len(ps) == 0 {
		return nil, fmt.Errorf("%w: collection is empty", types.ErrNoMatch)
	}
	largest := ps[0].TotalArea
	for _, p := range ps[1:] {
		if p.TotalArea > largest {
			largest = p.TotalArea
		}
	}
	return filter(ps, func(p types.Property) bool { return p.TotalArea == largest }), nil
}
