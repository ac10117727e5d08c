package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/listings/listings/query"
	"github.com/arthur-debert/listings/types"
)

// Details renders one labelled block per record.
var Details = &OutputFormat{
	Name:        "details",
	Description: "one labelled block per record",
	Render: func(w io.Writer, v any) error {
		var b strings.Builder
		switch v := v.(type) {
		case types.Property:
			writeProperty(&b, v)
		case []types.Property:
			for i, p := range v {
				if i > 0 {
					b.WriteString("\n")
				}
				writeProperty(&b, p)
			}
		case query.AreaAverage:
			writePairs(&b,
				"Area", v.Area,
				"Properties", fmt.Sprint(v.Count),
				"Total price", Money(v.Total),
				"Average price", Money(v.Average))
		case []query.BrokerSales:
			for i, s := range v {
				if i > 0 {
					b.WriteString("\n")
				}
				writePairs(&b,
					"Broker", s.Broker,
					"Properties", fmt.Sprint(s.Total),
					"Sold", fmt.Sprint(s.Sold),
					"Sold share", fmt.Sprintf("%.2f%%", s.Percent))
			}
		default:
			return unsupported("details", v)
		}
		_, err := io.WriteString(w, b.String())
		return err
	},
}

func init() {
	mustRegister(Details)
}

func writeProperty(b *strings.Builder, p types.Property) {
	writePairs(b,
		"Ref", fmt.Sprint(p.Ref),
		"Broker", p.Broker,
		"Type", p.Type,
		"Area", p.Area,
		"Exposition", p.Exposition,
		"Price", Money(p.Price),
		"Total area", fmt.Sprintf("%.2f", p.TotalArea),
		"Rooms", fmt.Sprint(p.Rooms),
		"Floor", fmt.Sprint(p.Floor),
		"Status", p.Status.String())
}

// writePairs writes label/value pairs with the values aligned.
func writePairs(b *strings.Builder, kv ...string) {
	width := 0
	for i := 0; i < len(kv); i += 2 {
		width = max(width, len(kv[i]))
	}
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(b, "%-*s  %s\n", width+1, kv[i]+":", kv[i+1])
	}
}
