// Package store holds the in-memory record collection and the Service
// that couples every mutation to a recovery sync.
package store

import (
	"fmt"

	"github.com/arthur-debert/listings/internal/validation"
	"github.com/arthur-debert/listings/listings/query"
	"github.com/arthur-debert/listings/types"
)

// Collection is the ordered, bounded set of live properties. Refs are
// unique and records keep their insertion order until sorted.
type Collection struct {
	items    []types.Property
	capacity int
}

// NewCollection returns an empty collection. A capacity outside
// 1..MaxProperties is replaced by MaxProperties.
func NewCollection(capacity int) *Collection {
	if capacity < 1 || capacity > types.MaxProperties {
		capacity = types.MaxProperties
	}
	return &Collection{
		items:    make([]types.Property, 0, capacity),
		capacity: capacity,
	}
}

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.items) }

// Capacity returns the maximum number of records.
func (c *Collection) Capacity() int { return c.capacity }

// All returns a copy of the records in collection order.
func (c *Collection) All() []types.Property {
	out := make([]types.Property, len(c.items))
	copy(out, c.items)
	return out
}

// FindByRef returns the position of the first record with ref.
func (c *Collection) FindByRef(ref int) (int, bool) {
	for i := range c.items {
		if c.items[i].Ref == ref {
			return i, true
		}
	}
	return -1, false
}

// Get returns the record with ref.
func (c *Collection) Get(ref int) (types.Property, error) {
	i, ok := c.FindByRef(ref)
	if !ok {
		return types.Property{}, fmt.Errorf("%w: ref %d", types.ErrNotFound, ref)
	}
	return c.items[i], nil
}

// Insert appends p as a new Available record and returns it as stored.
func (c *Collection) Insert(p types.Property) (types.Property, error) {
	if len(c.items) >= c.capacity {
		return types.Property{}, fmt.Errorf("%w: collection holds %d properties", types.ErrCapacityExceeded, c.capacity)
	}
	if _, ok := c.FindByRef(p.Ref); ok {
		return types.Property{}, fmt.Errorf("%w: ref %d", types.ErrDuplicateReference, p.Ref)
	}

	p, err := prepareNew(p)
	if err != nil {
		return types.Property{}, err
	}
	c.items = append(c.items, p)
	return p, nil
}

// InsertMany appends every record of ps or none of them.
func (c *Collection) InsertMany(ps []types.Property) ([]types.Property, error) {
	if len(c.items)+len(ps) > c.capacity {
		return nil, fmt.Errorf("%w: %d properties do not fit, %d slots free",
			types.ErrCapacityExceeded, len(ps), c.capacity-len(c.items))
	}

	seen := make(map[int]bool, len(ps))
	prepared := make([]types.Property, 0, len(ps))
	for i, p := range ps {
		if _, ok := c.FindByRef(p.Ref); ok || seen[p.Ref] {
			return nil, fmt.Errorf("%w: ref %d (batch item %d)", types.ErrDuplicateReference, p.Ref, i+1)
		}
		seen[p.Ref] = true

		p, err := prepareNew(p)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i+1, err)
		}
		prepared = append(prepared, p)
	}

	c.items = append(c.items, prepared...)
	out := make([]types.Property, len(prepared))
	copy(out, prepared)
	return out, nil
}

func prepareNew(p types.Property) (types.Property, error) {
	p = validation.SanitizeProperty(p)
	p.Status = types.Available
	if err := validation.ValidateProperty(p); err != nil {
		return types.Property{}, err
	}
	return p, nil
}

// DeleteByRef removes the record with ref. Later records move up one
// position; their relative order is kept.
func (c *Collection) DeleteByRef(ref int) (types.Property, error) {
	i, ok := c.FindByRef(ref)
	if !ok {
		return types.Property{}, fmt.Errorf("%w: ref %d", types.ErrNotFound, ref)
	}
	removed := c.items[i]
	copy(c.items[i:], c.items[i+1:])
	c.items[len(c.items)-1] = types.Property{}
	c.items = c.items[:len(c.items)-1]
	return removed, nil
}

// DeleteAll empties the collection and returns how many records it held.
func (c *Collection) DeleteAll() int {
	n := len(c.items)
	clear(c.items)
	c.items = c.items[:0]
	return n
}

// Update applies ch to the record with ref. Sold records are frozen.
func (c *Collection) Update(ref int, ch Change) (Outcome, error) {
	i, ok := c.FindByRef(ref)
	if !ok {
		return Invalid, fmt.Errorf("%w: ref %d", types.ErrNotFound, ref)
	}
	if c.items[i].Status == types.Sold {
		return Invalid, fmt.Errorf("%w: ref %d", types.ErrSoldLocked, ref)
	}
	return ch.apply(c, i)
}

// Replace swaps the whole collection for ps after checking capacity,
// ref uniqueness and every field. On error the collection is unchanged.
func (c *Collection) Replace(ps []types.Property) error {
	if len(ps) > c.capacity {
		return fmt.Errorf("%w: %d properties, capacity %d", types.ErrCapacityExceeded, len(ps), c.capacity)
	}
	seen := make(map[int]bool, len(ps))
	for _, p := range ps {
		if seen[p.Ref] {
			return fmt.Errorf("%w: ref %d", types.ErrDuplicateReference, p.Ref)
		}
		seen[p.Ref] = true
		if err := validation.ValidateProperty(p); err != nil {
			return fmt.Errorf("ref %d: %w", p.Ref, err)
		}
	}

	c.restore(ps)
	return nil
}

// SortByPrice reorders the collection in place.
func (c *Collection) SortByPrice(ascending bool) {
	query.SortByPrice(c.items, ascending)
}

func (c *Collection) snapshot() []types.Property {
	return c.All()
}

func (c *Collection) restore(ps []types.Property) {
	c.items = append(make([]types.Property, 0, c.capacity), ps...)
}
