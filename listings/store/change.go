package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/listings/internal/validation"
	"github.com/arthur-debert/listings/types"
)

// Outcome describes what an Update did.
type Outcome int

const (
	// Invalid accompanies every Update error.
	Invalid Outcome = iota
	// Unchanged means the new value equals the current one; nothing is synced.
	Unchanged
	// Changed means the record was modified.
	Changed
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return "invalid"
	}
}

// reservationDiscount is applied to the price when an Available
// property becomes Reserved.
const reservationDiscount = 0.8

// Change is a single typed field assignment built by one of the Set
// functions or by ParseChange.
type Change interface {
	Field() types.Field
	apply(c *Collection, i int) (Outcome, error)
}

// fieldChange is a lens over one comparable field of a Property.
type fieldChange[T comparable] struct {
	field types.Field
	value T
	get   func(*types.Property) T
	set   func(*types.Property, T)

	// normalize rewrites the incoming value before comparison
	normalize func(T) T
	// validate rejects a value that differs from the current one
	validate func(c *Collection, i int, v T) error
	// effect runs after set with the previous value
	effect func(p *types.Property, old T)
}

func (f fieldChange[T]) Field() types.Field { return f.field }

func (f fieldChange[T]) apply(c *Collection, i int) (Outcome, error) {
	v := f.value
	if f.normalize != nil {
		v = f.normalize(v)
	}

	p := c.items[i]
	old := f.get(&p)
	if old == v {
		return Unchanged, nil
	}
	if f.validate != nil {
		if err := f.validate(c, i, v); err != nil {
			return Invalid, err
		}
	}

	f.set(&p, v)
	if f.effect != nil {
		f.effect(&p, old)
	}
	c.items[i] = p
	return Changed, nil
}

// SetRef changes the reference number. The new ref must not belong to
// any other record.
func SetRef(ref int) Change {
	return fieldChange[int]{
		field: types.FieldRef,
		value: ref,
		get:   func(p *types.Property) int { return p.Ref },
		set:   func(p *types.Property, v int) { p.Ref = v },
		validate: func(c *Collection, i int, v int) error {
			if v <= 0 {
				return fmt.Errorf("%w: %s must be positive, got %d", types.ErrInvalidValue, types.FieldRef, v)
			}
			if err := validation.ValidateInt32(types.FieldRef, v); err != nil {
				return err
			}
			for j := range c.items {
				if j != i && c.items[j].Ref == v {
					return fmt.Errorf("%w: ref %d", types.ErrDuplicateReference, v)
				}
			}
			return nil
		},
	}
}

func textChange(field types.Field, value string, get func(*types.Property) *string) Change {
	return fieldChange[string]{
		field:     field,
		value:     value,
		get:       func(p *types.Property) string { return *get(p) },
		set:       func(p *types.Property, v string) { *get(p) = v },
		normalize: func(v string) string { return validation.SanitizeText(v, field.Size()) },
	}
}

// SetBroker changes the broker name.
func SetBroker(v string) Change {
	return textChange(types.FieldBroker, v, func(p *types.Property) *string { return &p.Broker })
}

// SetType changes the property type.
func SetType(v string) Change {
	return textChange(types.FieldType, v, func(p *types.Property) *string { return &p.Type })
}

// SetArea changes the area.
func SetArea(v string) Change {
	return textChange(types.FieldArea, v, func(p *types.Property) *string { return &p.Area })
}

// SetExposition changes the exposition.
func SetExposition(v string) Change {
	return textChange(types.FieldExposition, v, func(p *types.Property) *string { return &p.Exposition })
}

func numberChange(field types.Field, value float64, get func(*types.Property) *float64) Change {
	return fieldChange[float64]{
		field: field,
		value: value,
		get:   func(p *types.Property) float64 { return *get(p) },
		set:   func(p *types.Property, v float64) { *get(p) = v },
		validate: func(_ *Collection, _ int, v float64) error {
			return validation.ValidateNumber(field, v)
		},
	}
}

// SetPrice changes the price.
func SetPrice(v float64) Change {
	return numberChange(types.FieldPrice, v, func(p *types.Property) *float64 { return &p.Price })
}

// SetTotalArea changes the total area.
func SetTotalArea(v float64) Change {
	return numberChange(types.FieldTotalArea, v, func(p *types.Property) *float64 { return &p.TotalArea })
}

func intChange(field types.Field, value int, get func(*types.Property) *int) Change {
	return fieldChange[int]{
		field: field,
		value: value,
		get:   func(p *types.Property) int { return *get(p) },
		set:   func(p *types.Property, v int) { *get(p) = v },
		validate: func(_ *Collection, _ int, v int) error {
			return validation.ValidateInt32(field, v)
		},
	}
}

// SetRooms changes the number of rooms.
func SetRooms(v int) Change {
	return intChange(types.FieldRooms, v, func(p *types.Property) *int { return &p.Rooms })
}

// SetFloor changes the floor.
func SetFloor(v int) Change {
	return intChange(types.FieldFloor, v, func(p *types.Property) *int { return &p.Floor })
}

// SetStatus changes the status. Reserving an Available property
// discounts its price by 20%; no other transition touches the price.
func SetStatus(v types.Status) Change {
	return fieldChange[types.Status]{
		field: types.FieldStatus,
		value: v,
		get:   func(p *types.Property) types.Status { return p.Status },
		set:   func(p *types.Property, s types.Status) { p.Status = s },
		validate: func(_ *Collection, _ int, s types.Status) error {
			if !s.Valid() {
				return fmt.Errorf("%w: status ordinal %d", types.ErrInvalidValue, int32(s))
			}
			return nil
		},
		effect: func(p *types.Property, old types.Status) {
			if old == types.Available && p.Status == types.Reserved {
				p.Price *= reservationDiscount
			}
		},
	}
}

// ParseChange builds a Change from a field and its textual value.
func ParseChange(field types.Field, raw string) (Change, error) {
	switch field {
	case types.FieldBroker:
		return SetBroker(raw), nil
	case types.FieldType:
		return SetType(raw), nil
	case types.FieldArea:
		return SetArea(raw), nil
	case types.FieldExposition:
		return SetExposition(raw), nil
	case types.FieldStatus:
		s, err := types.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		return SetStatus(s), nil
	case types.FieldPrice, types.FieldTotalArea:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q is not a number", types.ErrInvalidValue, field, raw)
		}
		if field == types.FieldPrice {
			return SetPrice(v), nil
		}
		return SetTotalArea(v), nil
	case types.FieldRef, types.FieldRooms, types.FieldFloor:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q is not an integer", types.ErrInvalidValue, field, raw)
		}
		switch field {
		case types.FieldRef:
			return SetRef(v), nil
		case types.FieldRooms:
			return SetRooms(v), nil
		default:
			return SetFloor(v), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown field %d", types.ErrInvalidValue, int(field))
}
