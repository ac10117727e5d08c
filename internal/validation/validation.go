// Package validation sanitises operator input and checks property records
// against the limits of the storage formats.
package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/arthur-debert/listings/types"
)

// forbidden are the characters a stored text field may never contain:
// the recovery delimiter, line breaks (one record per line) and NUL
// (the binary format terminator).
const forbidden = types.Delimiter + "\r\n\x00"

// SanitizeText prepares operator input for storage in a text block of
// the given size. Forbidden characters are removed, surrounding space
// trimmed and the result cut to at most size-1 bytes without splitting
// a UTF-8 sequence.
func SanitizeText(s string, size int) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbidden, r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	return truncate(s, size-1)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

// SanitizeProperty applies SanitizeText to every text field of p.
func SanitizeProperty(p types.Property) types.Property {
	p.Broker = SanitizeText(p.Broker, types.BrokerSize)
	p.Type = SanitizeText(p.Type, types.TypeSize)
	p.Area = SanitizeText(p.Area, types.AreaSize)
	p.Exposition = SanitizeText(p.Exposition, types.ExpositionSize)
	return p
}

// ValidateText checks that s can be stored verbatim in a block of the
// given size. Decoders use it to reject data a sanitised writer could
// never have produced.
func ValidateText(field types.Field, s string) error {
	size := field.Size()
	if len(s) > size-1 {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", types.ErrInvalidValue, field, len(s), size-1)
	}
	if i := strings.IndexAny(s, forbidden); i >= 0 {
		return fmt.Errorf("%w: %s contains forbidden character %q", types.ErrInvalidValue, field, s[i])
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s is not valid UTF-8", types.ErrInvalidValue, field)
	}
	return nil
}

// ValidateNumber rejects NaN and infinities, which no file format can
// round-trip meaningfully.
func ValidateNumber(field types.Field, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %v", types.ErrInvalidValue, field, v)
	}
	return nil
}

// ValidateInt32 checks that an integer field fits the 32-bit slot of the
// binary format.
func ValidateInt32(field types.Field, v int) error {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return fmt.Errorf("%w: %s %d does not fit in 32 bits", types.ErrInvalidValue, field, v)
	}
	return nil
}

// ValidateProperty checks every field of p against the storage limits.
// Reference numbers must be positive.
func ValidateProperty(p types.Property) error {
	if p.Ref <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", types.ErrInvalidValue, types.FieldRef, p.Ref)
	}
	for _, c := range []struct {
		field types.Field
		value int
	}{
		{types.FieldRef, p.Ref},
		{types.FieldRooms, p.Rooms},
		{types.FieldFloor, p.Floor},
	} {
		if err := ValidateInt32(c.field, c.value); err != nil {
			return err
		}
	}

	for _, c := range []struct {
		field types.Field
		value string
	}{
		{types.FieldBroker, p.Broker},
		{types.FieldType, p.Type},
		{types.FieldArea, p.Area},
		{types.FieldExposition, p.Exposition},
	} {
		if err := ValidateText(c.field, c.value); err != nil {
			return err
		}
	}

	if err := ValidateNumber(types.FieldPrice, p.Price); err != nil {
		return err
	}
	if err := ValidateNumber(types.FieldTotalArea, p.TotalArea); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: status ordinal %d", types.ErrInvalidValue, int32(p.Status))
	}
	return nil
}
