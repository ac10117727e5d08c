package export

import (
	"bytes"
	"fmt"

	"github.com/arthur-debert/listings/formats"
	"github.com/arthur-debert/listings/types"
)

// Report renders the human-readable listing report: a title line with
// the record count followed by the property table.
func Report(ps []types.Property) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "--- REPORT: All Properties (%d) ---\n", len(ps))
	if err := formats.WritePropertyTable(&b, ps); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
