package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/arthur-debert/listings/listings/query"
	"github.com/arthur-debert/listings/testutil"
	"github.com/arthur-debert/listings/types"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

type result struct {
	stdout string
	stderr string
	code   int
}

// testDataDir isolates the log, home and data directories of one test.
func testDataDir(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LISTINGS_CONFIG", "")
	return t.TempDir()
}

func run(t *testing.T, dataDir, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	cli := NewCLI(strings.NewReader(stdin), &out, &errOut)
	code := cli.Run(append(args, "--data-dir="+dataDir))
	return result{stdout: out.String(), stderr: errOut.String(), code: code}
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	res := run(t, dataDir, "", args...)
	if res.code != 0 {
		t.Fatalf("listings %s: exit %d\nstdout: %s\nstderr: %s", strings.Join(args, " "), res.code, res.stdout, res.stderr)
	}
	return res.stdout
}

func addArgs(p types.Property) []string {
	return []string{"add",
		"--ref=" + strconv.Itoa(p.Ref),
		"--broker=" + p.Broker,
		"--type=" + p.Type,
		"--area=" + p.Area,
		"--exposition=" + p.Exposition,
		"--price=" + strconv.FormatFloat(p.Price, 'f', -1, 64),
		"--total-area=" + strconv.FormatFloat(p.TotalArea, 'f', -1, 64),
		"--rooms=" + strconv.Itoa(p.Rooms),
		"--floor=" + strconv.Itoa(p.Floor),
	}
}

func decodeProperties(t *testing.T, out string) []types.Property {
	t.Helper()
	var ps []types.Property
	if err := json.Unmarshal([]byte(out), &ps); err != nil {
		t.Fatalf("output is not a JSON property list: %v\n%s", err, out)
	}
	return ps
}

// seedFixture adds every fixture record in one batch and marks the
// fixture's sold records as sold.
func seedFixture(t *testing.T, dir string) *testutil.Fixture {
	t.Helper()
	fix := testutil.LoadFixture(t)

	data, err := yaml.Marshal(fix.All())
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	batch := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(batch, data, 0644); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	mustRun(t, dir, "add", "--file", batch)

	for _, p := range fix.WithStatus(types.Sold) {
		mustRun(t, dir, "update", strconv.Itoa(p.Ref), "status", "sold")
	}
	return fix
}

func TestAddGetList(t *testing.T) {
	dir := testDataDir(t)
	fix := testutil.LoadFixture(t)

	for _, ref := range []int{11, 4} {
		out := mustRun(t, dir, addArgs(fix.ByRef[ref])...)
		if !strings.Contains(out, "Added property "+strconv.Itoa(ref)) {
			t.Errorf("add %d output = %q", ref, out)
		}
	}

	t.Run("get", func(t *testing.T) {
		var got types.Property
		out := mustRun(t, dir, "get", "11", "--format", "json")
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("decode: %v\n%s", err, out)
		}
		want := fix.ByRef[11]
		want.Status = types.Available
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("get mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		ps := decodeProperties(t, mustRun(t, dir, "list", "--format", "json"))
		testutil.AssertRefs(t, ps, 11, 4)
	})

	t.Run("table", func(t *testing.T) {
		out := mustRun(t, dir, "list")
		for _, want := range []string{"Ivan Petrov", "Nikolay Dimitrov", "260,000.00", "Available"} {
			if !strings.Contains(out, want) {
				t.Errorf("table output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("duplicate ref", func(t *testing.T) {
		res := run(t, dir, "", addArgs(fix.ByRef[4])...)
		if res.code != 1 || !strings.Contains(res.stderr, "reference number already in use") {
			t.Errorf("duplicate add: code %d stderr %q", res.code, res.stderr)
		}
	})

	t.Run("missing flag", func(t *testing.T) {
		res := run(t, dir, "", "add", "--ref=99", "--broker=X")
		if res.code != 1 || !strings.Contains(res.stderr, "--type missing") {
			t.Errorf("incomplete add: code %d stderr %q", res.code, res.stderr)
		}
	})

	t.Run("unknown ref", func(t *testing.T) {
		res := run(t, dir, "", "get", "99")
		if res.code != 1 || !strings.Contains(res.stderr, "property not found") {
			t.Errorf("get 99: code %d stderr %q", res.code, res.stderr)
		}
	})
}

func TestQueries(t *testing.T) {
	dir := testDataDir(t)
	fix := seedFixture(t, dir)

	tests := []struct {
		name string
		args []string
		want []int
	}{
		{"broker ascending", []string{"search", "broker", "Ivan Petrov"}, []int{8, 1, 11, 3}},
		{"broker descending", []string{"search", "broker", "Ivan Petrov", "--desc"}, []int{3, 11, 1, 8}},
		{"rooms", []string{"search", "rooms", "2"}, []int{2, 8, 7}},
		{"sold", []string{"list", "--sold"}, []int{3, 5, 7}},
		{"largest", []string{"list", "--largest"}, []int{3, 9}},
		{"most expensive", []string{"report", "most-expensive", "Boyana"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, dir, append(tt.args, "--format", "json")...)
			if tt.want == nil {
				var p types.Property
				if err := json.Unmarshal([]byte(out), &p); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if p.Ref != 3 {
					t.Errorf("most expensive in Boyana = %d, want 3", p.Ref)
				}
				return
			}
			testutil.AssertRefs(t, decodeProperties(t, out), tt.want...)
		})
	}

	t.Run("average", func(t *testing.T) {
		var got query.AreaAverage
		out := mustRun(t, dir, "report", "average", "Center", "--format", "json")
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		want := query.AreaAverage{Area: "Center", Count: 4, Total: 729000, Average: 182250}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("average mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("sold by broker", func(t *testing.T) {
		var got []query.BrokerSales
		out := mustRun(t, dir, "report", "sold-by-broker", "--format", "json")
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		want, err := query.SoldPercentageByBroker(fix.All())
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("sales mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no match exits zero", func(t *testing.T) {
		res := run(t, dir, "", "search", "broker", "Nobody")
		if res.code != 0 {
			t.Fatalf("exit %d, stderr %q", res.code, res.stderr)
		}
		if !strings.Contains(res.stdout, "No matching properties") {
			t.Errorf("stdout = %q", res.stdout)
		}
	})

	t.Run("sort persists", func(t *testing.T) {
		mustRun(t, dir, "sort", "--desc")
		ps := decodeProperties(t, mustRun(t, dir, "list", "--format", "json"))
		testutil.AssertPricesOrdered(t, ps, false)
		testutil.AssertRefs(t, ps[:2], 3, 9)
	})
}

func TestDeleteConfirmation(t *testing.T) {
	dir := testDataDir(t)
	fix := testutil.LoadFixture(t)
	mustRun(t, dir, addArgs(fix.ByRef[1])...)
	mustRun(t, dir, addArgs(fix.ByRef[2])...)
	mustRun(t, dir, addArgs(fix.ByRef[3])...)

	res := run(t, dir, "n\n", "delete", "2")
	if res.code != 1 || !strings.Contains(res.stderr, "cancelled by operator") {
		t.Fatalf("declined delete: code %d stderr %q", res.code, res.stderr)
	}
	if !strings.Contains(res.stderr, "Delete property 2") {
		t.Errorf("prompt not shown on stderr: %q", res.stderr)
	}
	testutil.AssertRefs(t, decodeProperties(t, mustRun(t, dir, "list", "--format", "json")), 1, 2, 3)

	res = run(t, dir, "y\n", "delete", "2")
	if res.code != 0 {
		t.Fatalf("confirmed delete: code %d stderr %q", res.code, res.stderr)
	}
	testutil.AssertRefs(t, decodeProperties(t, mustRun(t, dir, "list", "--format", "json")), 1, 3)

	if res := run(t, dir, "", "delete"); res.code != 1 {
		t.Errorf("delete without ref or --all: code %d", res.code)
	}

	out := mustRun(t, dir, "delete", "--all", "--yes")
	if !strings.Contains(out, "Deleted 2 properties") {
		t.Errorf("delete --all output = %q", out)
	}
	if out := mustRun(t, dir, "list"); !strings.Contains(out, "No properties stored") {
		t.Errorf("list after delete --all = %q", out)
	}
}

func TestUpdate(t *testing.T) {
	dir := testDataDir(t)
	mustRun(t, dir, addArgs(types.Property{
		Ref: 12, Broker: "Ivan Petrov", Type: "Apartment", Area: "Center",
		Exposition: "South", Price: 250000, TotalArea: 85, Rooms: 3, Floor: 4,
	})...)

	get := func(ref string) types.Property {
		t.Helper()
		var p types.Property
		if err := json.Unmarshal([]byte(mustRun(t, dir, "get", ref, "--format", "json")), &p); err != nil {
			t.Fatal(err)
		}
		return p
	}

	out := mustRun(t, dir, "update", "12", "status", "reserved")
	if !strings.Contains(out, "Property 12 changed") {
		t.Errorf("update output = %q", out)
	}
	if p := get("12"); p.Status != types.Reserved || p.Price != 200000 {
		t.Errorf("after reserve: status %v price %v, want Reserved 200000", p.Status, p.Price)
	}

	out = mustRun(t, dir, "update", "12", "status", "Reserved")
	if !strings.Contains(out, "Property 12 unchanged") {
		t.Errorf("repeated update output = %q", out)
	}

	mustRun(t, dir, "update", "12", "ref", "13")
	if p := get("13"); p.Ref != 13 {
		t.Errorf("renumbered ref = %d", p.Ref)
	}

	if res := run(t, dir, "", "update", "13", "colour", "blue"); res.code != 1 || !strings.Contains(res.stderr, "unknown field") {
		t.Errorf("unknown field: code %d stderr %q", res.code, res.stderr)
	}

	mustRun(t, dir, "update", "13", "status", "sold")
	res := run(t, dir, "", "update", "13", "price", "1")
	if res.code != 1 || !strings.Contains(res.stderr, "sold properties cannot be edited") {
		t.Errorf("update sold: code %d stderr %q", res.code, res.stderr)
	}
}

func TestFiles(t *testing.T) {
	dir := testDataDir(t)
	fix := testutil.LoadFixture(t)
	mustRun(t, dir, addArgs(fix.ByRef[1])...)
	mustRun(t, dir, addArgs(fix.ByRef[2])...)

	backup := filepath.Join(dir, "properties.bin")
	mustRun(t, dir, "backup", "save")
	if _, err := os.Stat(backup); err != nil {
		t.Fatalf("backup not written: %v", err)
	}

	t.Run("overwrite declined", func(t *testing.T) {
		res := run(t, dir, "n\n", "backup", "save")
		if res.code != 1 || !strings.Contains(res.stderr, "cancelled by operator") {
			t.Errorf("code %d stderr %q", res.code, res.stderr)
		}
	})

	t.Run("load replaces the collection", func(t *testing.T) {
		mustRun(t, dir, "delete", "--all", "--yes")
		out := mustRun(t, dir, "backup", "load")
		if !strings.Contains(out, "Loaded 2 properties") {
			t.Errorf("load output = %q", out)
		}
		testutil.AssertRefs(t, decodeProperties(t, mustRun(t, dir, "list", "--format", "json")), 1, 2)
	})

	t.Run("corrupt backup leaves store untouched", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.bin")
		if err := os.WriteFile(bad, []byte{1, 2, 3}, 0644); err != nil {
			t.Fatal(err)
		}
		res := run(t, dir, "", "backup", "load", "--file", bad, "--yes")
		if res.code != 1 || !strings.Contains(res.stderr, "file contents are corrupt") {
			t.Errorf("code %d stderr %q", res.code, res.stderr)
		}
		testutil.AssertRefs(t, decodeProperties(t, mustRun(t, dir, "list", "--format", "json")), 1, 2)
	})

	t.Run("export", func(t *testing.T) {
		mustRun(t, dir, "export")
		data, err := os.ReadFile(filepath.Join(dir, "properties_report.txt"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "--- REPORT: All Properties (2) ---") {
			t.Errorf("report starts with %q", strings.SplitN(string(data), "\n", 2)[0])
		}
	})

	t.Run("archive", func(t *testing.T) {
		zipPath := filepath.Join(t.TempDir(), "listings.zip")
		mustRun(t, dir, "archive", zipPath)
		out := mustRun(t, dir, "archive", "show", zipPath)
		for _, name := range []string{"properties.bin", "properties_report.txt", "recovery.txt"} {
			if !strings.Contains(out, name) {
				t.Errorf("archive listing missing %s:\n%s", name, out)
			}
		}
	})
}

func TestStartup(t *testing.T) {
	dir := testDataDir(t)
	fix := testutil.LoadFixture(t)
	mustRun(t, dir, addArgs(fix.ByRef[1])...)

	t.Run("ignore policy", func(t *testing.T) {
		out := mustRun(t, dir, "list", "--startup-policy", "ignore")
		if !strings.Contains(out, "No properties stored") {
			t.Errorf("list = %q", out)
		}
	})

	t.Run("confirm policy declined", func(t *testing.T) {
		res := run(t, dir, "n\n", "list", "--startup-policy", "confirm")
		if res.code != 0 || !strings.Contains(res.stdout, "No properties stored") {
			t.Errorf("code %d stdout %q", res.code, res.stdout)
		}
	})

	t.Run("malformed line skipped", func(t *testing.T) {
		textPath := filepath.Join(dir, "recovery", "recovery.txt")
		data, err := os.ReadFile(textPath)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(textPath, append(data, "not|a|record\n"...), 0644); err != nil {
			t.Fatal(err)
		}
		res := run(t, dir, "", "list", "--format", "json")
		if res.code != 0 {
			t.Fatalf("code %d stderr %q", res.code, res.stderr)
		}
		if !strings.Contains(res.stderr, "skipped 1 malformed recovery line(s)") {
			t.Errorf("stderr = %q", res.stderr)
		}
		testutil.AssertRefs(t, decodeProperties(t, res.stdout), 1)
	})
}

func TestConfiguration(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		dir := testDataDir(t)
		t.Setenv("LISTINGS_CAPACITY", "1")
		out := mustRun(t, dir, "config")
		if !strings.Contains(out, "capacity: 1") {
			t.Errorf("config output:\n%s", out)
		}

		fix := testutil.LoadFixture(t)
		mustRun(t, dir, addArgs(fix.ByRef[1])...)
		res := run(t, dir, "", addArgs(fix.ByRef[2])...)
		if res.code != 1 || !strings.Contains(res.stderr, "the store is full") {
			t.Errorf("add past capacity: code %d stderr %q", res.code, res.stderr)
		}
	})

	t.Run("config file", func(t *testing.T) {
		dir := testDataDir(t)
		cfgPath := filepath.Join(t.TempDir(), "listings.yaml")
		if err := os.WriteFile(cfgPath, []byte("format: json\nbackup_file: saved.bin\n"), 0644); err != nil {
			t.Fatal(err)
		}

		var got settings
		out := mustRun(t, dir, "config", "--config", cfgPath)
		if !strings.HasPrefix(out, "# config file: "+cfgPath) {
			t.Errorf("config file not reported:\n%s", out)
		}
		if err := yaml.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("config output is not YAML: %v", err)
		}
		if got.Format != "json" || got.BackupFile != "saved.bin" || got.DataDir != dir {
			t.Errorf("settings = %+v", got)
		}

		t.Setenv("LISTINGS_CONFIG", cfgPath)
		if out := mustRun(t, dir, "list"); strings.TrimSpace(out) != "[]" {
			t.Errorf("list with json from LISTINGS_CONFIG = %q", out)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		dir := testDataDir(t)
		t.Setenv("LISTINGS_CAPACITY", "500")
		res := run(t, dir, "", "list")
		if res.code != 1 || !strings.Contains(res.stderr, "configuration error") {
			t.Errorf("code %d stderr %q", res.code, res.stderr)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		dir := testDataDir(t)
		res := run(t, dir, "", "list", "--format", "xml")
		if res.code != 1 || !strings.Contains(res.stderr, `unknown output format "xml"`) {
			t.Errorf("code %d stderr %q", res.code, res.stderr)
		}
	})
}

func TestLogging(t *testing.T) {
	dir := testDataDir(t)
	fix := testutil.LoadFixture(t)

	res := run(t, dir, "", append(addArgs(fix.ByRef[1]), "--verbose", "--log-level", "info")...)
	if res.code != 0 {
		t.Fatalf("code %d stderr %q", res.code, res.stderr)
	}
	if !strings.Contains(res.stderr, "property added") {
		t.Errorf("verbose stderr missing log record: %q", res.stderr)
	}

	data, err := os.ReadFile(filepath.Join(os.Getenv("XDG_CACHE_HOME"), "listings", "listings.log"))
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(data), `"run_id"`) || !strings.Contains(string(data), `"msg":"property added"`) {
		t.Errorf("log file content:\n%s", data)
	}
}

func TestWrapError(t *testing.T) {
	err := WrapError("delete property", fmt.Errorf("%w: ref 99", types.ErrNotFound))
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("WrapError returned %T", err)
	}
	if cliErr.Cause != "property not found" || !errors.Is(err, types.ErrNotFound) {
		t.Errorf("cliErr = %+v", cliErr)
	}

	msg := err.Error()
	for _, want := range []string{"Failed to delete property: property not found", "Suggestions:", "1. Verify the reference number"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	if again := WrapError("other", err); again != cliErr {
		t.Error("wrapping a CLIError should return it unchanged")
	}
	if WrapError("noop", nil) != nil {
		t.Error("WrapError(nil) should be nil")
	}
}
