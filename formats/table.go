package formats

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/arthur-debert/listings/listings/query"
	"github.com/arthur-debert/listings/types"
	"github.com/dustin/go-humanize"
)

// Table renders records as an aligned, pipe-separated grid.
var Table = &OutputFormat{
	Name:        "table",
	Description: "aligned columns, one row per record",
	Render: func(w io.Writer, v any) error {
		var t *grid
		switch v := v.(type) {
		case types.Property:
			t = propertyGrid([]types.Property{v})
		case []types.Property:
			t = propertyGrid(v)
		case query.AreaAverage:
			t = newGrid([]string{"Area", "Properties", "Total", "Average"}, 1, 2, 3)
			t.add(v.Area, strconv.Itoa(v.Count), Money(v.Total), Money(v.Average))
		case []query.BrokerSales:
			t = newGrid([]string{"Broker", "Properties", "Sold", "Sold %"}, 1, 2, 3)
			for _, s := range v {
				t.add(s.Broker, strconv.Itoa(s.Total), strconv.Itoa(s.Sold), fmt.Sprintf("%.2f", s.Percent))
			}
		default:
			return unsupported("table", v)
		}
		_, err := io.WriteString(w, t.String())
		return err
	},
}

func init() {
	mustRegister(Table)
}

// WritePropertyTable writes ps as a table. The report file uses the
// same layout as the table output format.
func WritePropertyTable(w io.Writer, ps []types.Property) error {
	_, err := io.WriteString(w, propertyGrid(ps).String())
	return err
}

// Money formats an amount with thousands separators and two decimals.
func Money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func propertyGrid(ps []types.Property) *grid {
	t := newGrid([]string{"Ref", "Broker", "Type", "Area", "Exposition", "Price", "Total Area", "Rooms", "Floor", "Status"},
		0, 5, 6, 7, 8)
	for _, p := range ps {
		t.add(
			strconv.Itoa(p.Ref),
			p.Broker,
			p.Type,
			p.Area,
			p.Exposition,
			Money(p.Price),
			fmt.Sprintf("%.2f", p.TotalArea),
			strconv.Itoa(p.Rooms),
			strconv.Itoa(p.Floor),
			p.Status.String(),
		)
	}
	return t
}

type grid struct {
	headers []string
	right   map[int]bool
	rows    [][]string
}

func newGrid(headers []string, rightAligned ...int) *grid {
	g := &grid{headers: headers, right: make(map[int]bool)}
	for _, i := range rightAligned {
		g.right[i] = true
	}
	return g
}

func (g *grid) add(cells ...string) {
	g.rows = append(g.rows, cells)
}

func (g *grid) String() string {
	widths := make([]int, len(g.headers))
	for i, h := range g.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range g.rows {
		for i, c := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(c))
		}
	}

	total := 1
	for _, w := range widths {
		total += w + 3
	}
	rule := strings.Repeat("-", total) + "\n"

	var b strings.Builder
	b.WriteString(rule)
	g.line(&b, g.headers, widths, false)
	b.WriteString(rule)
	for _, row := range g.rows {
		g.line(&b, row, widths, true)
	}
	b.WriteString(rule)
	return b.String()
}

func (g *grid) line(b *strings.Builder, cells []string, widths []int, align bool) {
	b.WriteString("|")
	for i, c := range cells {
		pad := strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c))
		b.WriteString(" ")
		if align && g.right[i] {
			b.WriteString(pad + c)
		} else {
			b.WriteString(c + pad)
		}
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
