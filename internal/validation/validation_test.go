package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/arthur-debert/listings/types"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		size int
		want string
	}{
		{"plain", "Century 21", types.BrokerSize, "Century 21"},
		{"strips delimiter", "Smith|Jones", types.BrokerSize, "SmithJones"},
		{"strips only delimiters", "|||", types.BrokerSize, ""},
		{"strips line breaks", "North\r\nEast", types.ExpositionSize, "NorthEast"},
		{"trims space", "  Center  ", types.AreaSize, "Center"},
		{"truncates to size-1", strings.Repeat("a", 30), types.ExpositionSize, strings.Repeat("a", 19)},
		// "ж" is two bytes; 10 of them are 20 bytes, the cut at 19 must back off to 18.
		{"truncates on rune boundary", strings.Repeat("ж", 10), types.ExpositionSize, strings.Repeat("ж", 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.in, tt.size)
			if got != tt.want {
				t.Errorf("SanitizeText(%q, %d) = %q, want %q", tt.in, tt.size, got, tt.want)
			}
		})
	}
}

func TestSanitizedTextAlwaysValidates(t *testing.T) {
	inputs := []string{"a|b", "x\ny", strings.Repeat("é|", 40), "\x00nul"}
	for _, in := range inputs {
		out := SanitizeText(in, types.BrokerSize)
		if err := ValidateText(types.FieldBroker, out); err != nil {
			t.Errorf("sanitized %q -> %q still invalid: %v", in, out, err)
		}
	}
}

func TestValidateText(t *testing.T) {
	if err := ValidateText(types.FieldArea, "has|pipe"); !errors.Is(err, types.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for delimiter, got %v", err)
	}
	if err := ValidateText(types.FieldExposition, strings.Repeat("s", 20)); !errors.Is(err, types.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for over-long field, got %v", err)
	}
	if err := ValidateText(types.FieldExposition, strings.Repeat("s", 19)); err != nil {
		t.Errorf("19 bytes should fit exposition: %v", err)
	}
}

func TestValidateProperty(t *testing.T) {
	valid := types.Property{Ref: 1, Broker: "B", Price: 10, Status: types.Available}
	if err := ValidateProperty(valid); err != nil {
		t.Fatalf("valid property rejected: %v", err)
	}

	bad := map[string]types.Property{
		"nan price":      {Ref: 1, Price: math.NaN(), Status: types.Available},
		"inf area":       {Ref: 1, TotalArea: math.Inf(1), Status: types.Available},
		"unknown status": {Ref: 1, Status: types.Status(7)},
		"ref overflow":   {Ref: math.MaxInt32 + 1, Status: types.Available},
		"zero ref":       {Ref: 0, Status: types.Available},
		"negative ref":   {Ref: -4, Status: types.Available},
		"pipe in type":   {Ref: 1, Type: "a|b", Status: types.Available},
	}
	for name, p := range bad {
		t.Run(name, func(t *testing.T) {
			if err := ValidateProperty(p); !errors.Is(err, types.ErrInvalidValue) {
				t.Errorf("expected ErrInvalidValue, got %v", err)
			}
		})
	}
}
