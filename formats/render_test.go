package formats

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/arthur-debert/listings/listings/query"
	"github.com/arthur-debert/listings/types"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

var fixture = []types.Property{
	{Ref: 1, Broker: "Иван", Type: "Flat", Area: "Center", Exposition: "South", Price: 100000, TotalArea: 65.5, Rooms: 2, Floor: 3, Status: types.Available},
	{Ref: 22, Broker: "Maria", Type: "House", Area: "Boyana", Exposition: "North", Price: 1250000.5, TotalArea: 210, Rooms: 6, Floor: 0, Status: types.Sold},
}

func render(t *testing.T, f *OutputFormat, v any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := f.Render(&buf, v); err != nil {
		t.Fatalf("%s.Render(%T): %v", f.Name, v, err)
	}
	return buf.String()
}

func TestMoney(t *testing.T) {
	tests := map[float64]string{
		0:         "0.00",
		999.999:   "1,000.00",
		125000:    "125,000.00",
		1250000.5: "1,250,000.50",
		-4321.1:   "-4,321.10",
	}
	for in, want := range tests {
		if got := Money(in); got != want {
			t.Errorf("Money(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTableAlignment(t *testing.T) {
	out := render(t, Table, fixture)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), out)
	}

	// every line has the same display width, Cyrillic included
	width := len([]rune(lines[0]))
	for i, l := range lines {
		if n := len([]rune(l)); n != width {
			t.Errorf("line %d width %d, want %d: %q", i, n, width, l)
		}
	}
	if !strings.Contains(lines[1], "| Ref | Broker |") {
		t.Errorf("header = %q", lines[1])
	}
	if !strings.Contains(lines[4], "| 1,250,000.50 |") || !strings.Contains(lines[4], "| Sold ") {
		t.Errorf("row = %q", lines[4])
	}
	if !strings.HasPrefix(lines[3], "|   1 | Иван ") {
		t.Errorf("row = %q, want right-aligned ref", lines[3])
	}
}

func TestTableEmpty(t *testing.T) {
	out := render(t, Table, []types.Property(nil))
	if n := strings.Count(out, "\n"); n != 4 {
		t.Errorf("empty table has %d lines, want header and three rules:\n%s", n, out)
	}
}

func TestTableReports(t *testing.T) {
	out := render(t, Table, query.AreaAverage{Area: "Center", Count: 2, Total: 250000, Average: 125000})
	if !strings.Contains(out, "| Center |          2 | 250,000.00 | 125,000.00 |") {
		t.Errorf("average table:\n%s", out)
	}

	out = render(t, Table, []query.BrokerSales{{Broker: "Ivan", Total: 3, Sold: 1, Percent: 100.0 / 3}})
	if !strings.Contains(out, "33.33") {
		t.Errorf("sales table:\n%s", out)
	}
}

func TestDetails(t *testing.T) {
	out := render(t, Details, fixture[1])
	want := `Ref:         22
Broker:      Maria
Type:        House
Area:        Boyana
Exposition:  North
Price:       1,250,000.50
Total area:  210.00
Rooms:       6
Floor:       0
Status:      Sold
`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if blocks := strings.Count(render(t, Details, fixture), "Ref:"); blocks != 2 {
		t.Errorf("got %d blocks, want 2", blocks)
	}
}

func TestHumanFormatsRejectUnknownValues(t *testing.T) {
	for _, f := range []*OutputFormat{Table, Details} {
		if err := f.Render(&bytes.Buffer{}, 42); err == nil {
			t.Errorf("%s: expected error for int", f.Name)
		}
	}
}

func TestStructuredFormats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var got []types.Property
		if err := json.Unmarshal([]byte(render(t, JSON, fixture)), &got); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(fixture, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if out := render(t, JSON, []types.Property(nil)); strings.TrimSpace(out) != "[]" {
			t.Errorf("nil list = %q, want []", out)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out := render(t, YAML, fixture)
		if !strings.Contains(out, "status: Sold") || !strings.Contains(out, "total_area: 210") {
			t.Errorf("yaml output:\n%s", out)
		}
		var got []types.Property
		if err := yaml.Unmarshal([]byte(out), &got); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(fixture, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}
