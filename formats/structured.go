package formats

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/listings/types"
	"gopkg.in/yaml.v3"
)

// JSON renders any value as indented JSON.
var JSON = &OutputFormat{
	Name:        "json",
	Description: "indented JSON",
	Render: func(w io.Writer, v any) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(normalize(v))
	},
}

// YAML renders any value as a YAML document.
var YAML = &OutputFormat{
	Name:        "yaml",
	Description: "YAML document",
	Render: func(w io.Writer, v any) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(normalize(v)); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	mustRegister(JSON)
	mustRegister(YAML)
}

// normalize turns a nil record list into an empty one so it renders as
// [] rather than null.
func normalize(v any) any {
	if ps, ok := v.([]types.Property); ok && ps == nil {
		return []types.Property{}
	}
	return v
}
