// Package formats renders listings data for the command line. Each
// OutputFormat is registered by name so front ends can select one from
// a flag or configuration value.
package formats

import (
	"fmt"
	"io"
	"sort"
)

// OutputFormat defines how a value is written for the operator
type OutputFormat struct {
	// Name is the format identifier (alphanumeric, dashes, underscores, lowercase)
	Name string

	// Description is a one-line summary shown in help text
	Description string

	// Render writes v to w. Human-oriented formats support
	// types.Property, []types.Property, query.AreaAverage and
	// []query.BrokerSales; structured formats accept any value.
	Render func(w io.Writer, v any) error
}

// registry holds all available output formats
var registry = make(map[string]*OutputFormat)

// Register adds a new output format to the registry
func Register(format *OutputFormat) error {
	if !isValidFormatName(format.Name) {
		return fmt.Errorf("invalid format name %q: must be lowercase alphanumeric with dashes and underscores only", format.Name)
	}
	if format.Render == nil {
		return fmt.Errorf("format %q has no renderer", format.Name)
	}
	if _, exists := registry[format.Name]; exists {
		return fmt.Errorf("format %q already registered", format.Name)
	}

	registry[format.Name] = format
	return nil
}

// Get returns an output format by name
func Get(name string) (*OutputFormat, error) {
	format, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("unknown format %q (available: %v)", name, List())
	}
	return format, nil
}

// List returns all registered format names in sorted order
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isValidFormatName checks if a format name is valid
func isValidFormatName(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func unsupported(format string, v any) error {
	return fmt.Errorf("format %q cannot render %T", format, v)
}

func mustRegister(format *OutputFormat) {
	if err := Register(format); err != nil {
		panic(fmt.Sprintf("failed to register %s format: %v", format.Name, err))
	}
}
