// Package types holds the data model shared by every listings package:
// the property record, its status, field identifiers, configuration and
// the error kinds surfaced by store operations.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxProperties is the hard upper bound of the collection. The binary
// snapshot format cannot describe more records than this.
const MaxProperties = 100

// Fixed block sizes of the text fields, terminator included. A field
// can hold at most size-1 bytes.
const (
	BrokerSize     = 50
	TypeSize       = 50
	AreaSize       = 50
	ExpositionSize = 20
)

// Delimiter separates fields in the recovery text format. It is never
// allowed inside a stored text field.
const Delimiter = "|"

// Status is the availability marker of a property. The numeric values
// are persisted in both file formats and must not change.
type Status int32

const (
	Sold      Status = 0
	Reserved  Status = 1
	Available Status = 2
)

var statusNames = map[Status]string{
	Sold:      "Sold",
	Reserved:  "Reserved",
	Available: "Available",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// MarshalText renders the status by name in JSON and YAML output.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidValue, int32(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts a status name or its ordinal.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus parses a status name case-insensitively ("sold", "RESERVED")
// or its persisted ordinal ("0", "1", "2").
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		st := Status(n)
		if !st.Valid() {
			return 0, fmt.Errorf("%w: status ordinal %d", ErrInvalidValue, n)
		}
		return st, nil
	}

	name := cases.Title(language.Und).String(raw)
	for st, known := range statusNames {
		if known == name {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown status %q (want Available, Reserved or Sold)", ErrInvalidValue, raw)
}

// Property is one real-estate listing.
type Property struct {
	Ref        int     `json:"ref" yaml:"ref"`
	Broker     string  `json:"broker" yaml:"broker"`
	Type       string  `json:"type" yaml:"type"`
	Area       string  `json:"area" yaml:"area"`
	Exposition string  `json:"exposition" yaml:"exposition"`
	Price      float64 `json:"price" yaml:"price"`
	TotalArea  float64 `json:"total_area" yaml:"total_area"`
	Rooms      int     `json:"rooms" yaml:"rooms"`
	Floor      int     `json:"floor" yaml:"floor"`
	Status     Status  `json:"status" yaml:"status"`
}

// Field identifies one updatable attribute of a Property.
type Field int

const (
	FieldRef Field = iota
	FieldBroker
	FieldType
	FieldArea
	FieldExposition
	FieldPrice
	FieldTotalArea
	FieldRooms
	FieldFloor
	FieldStatus
)

var fieldNames = []string{
	FieldRef:        "ref",
	FieldBroker:     "broker",
	FieldType:       "type",
	FieldArea:       "area",
	FieldExposition: "exposition",
	FieldPrice:      "price",
	FieldTotalArea:  "total-area",
	FieldRooms:      "rooms",
	FieldFloor:      "floor",
	FieldStatus:     "status",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// Size returns the fixed block size of a text field, or 0 for
// non-text fields.
func (f Field) Size() int {
	switch f {
	case FieldBroker:
		return BrokerSize
	case FieldType:
		return TypeSize
	case FieldArea:
		return AreaSize
	case FieldExposition:
		return ExpositionSize
	default:
		return 0
	}
}

// FieldNames lists the names accepted by ParseField in display order.
func FieldNames() []string {
	out := make([]string, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// ParseField resolves a field name. Underscores and dashes are
// interchangeable ("total_area" == "total-area").
func ParseField(name string) (Field, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.ReplaceAll(norm, "_", "-")
	switch norm {
	case "reference", "ref-number", "refnumber":
		norm = "ref"
	case "totalarea":
		norm = "total-area"
	}
	for i, n := range fieldNames {
		if n == norm {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown field %q (want one of %s)", ErrInvalidValue, name, strings.Join(fieldNames, ", "))
}
