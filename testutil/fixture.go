// Package testutil loads the shared property fixture and opens services
// seeded with it on an in-memory file system.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/arthur-debert/listings/listings/storage"
	"github.com/arthur-debert/listings/listings/store"
	"github.com/arthur-debert/listings/types"
)

// Fixture provides typed access to testdata/listings.json.
//
// The data is shaped for the queries: refs 3 and 9 share the largest
// area and the highest price, refs 2 and 8 tie on price, Center holds
// four records averaging 182250, and each of three brokers has exactly
// one sold property.
type Fixture struct {
	Properties []types.Property
	ByRef      map[int]types.Property
}

type fixtureData struct {
	Properties []types.Property `json:"properties"`
}

// LoadFixture reads the fixture file.
func LoadFixture(t testing.TB) *Fixture {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate fixture directory")
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(file), "testdata", "listings.json"))
	if err != nil {
		t.Fatalf("failed to read fixture file: %v", err)
	}

	var fixture fixtureData
	if err := json.Unmarshal(data, &fixture); err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	f := &Fixture{
		Properties: fixture.Properties,
		ByRef:      make(map[int]types.Property, len(fixture.Properties)),
	}
	for _, p := range fixture.Properties {
		f.ByRef[p.Ref] = p
	}
	return f
}

// All returns a fresh copy of the fixture records.
func (f *Fixture) All() []types.Property {
	out := make([]types.Property, len(f.Properties))
	copy(out, f.Properties)
	return out
}

// WithStatus returns the fixture records with status s.
func (f *Fixture) WithStatus(s types.Status) []types.Property {
	var out []types.Property
	for _, p := range f.Properties {
		if p.Status == s {
			out = append(out, p)
		}
	}
	return out
}

// OpenSeeded opens a Service on a mock file system whose recovery files
// already hold the fixture. Statuses are preserved, unlike Add which
// always stores Available.
func OpenSeeded(t testing.TB, cfg types.Config, opts ...store.Option) (*store.Service, *storage.MockFileSystem) {
	t.Helper()

	mockFS := storage.NewMockFileSystem()
	locks := storage.NewMockFileLockFactory()

	r := storage.NewRecovery(cfg, storage.WithFileSystem(mockFS), storage.WithFileLockFactory(locks))
	if err := r.Sync(LoadFixture(t).All()); err != nil {
		t.Fatalf("failed to seed recovery files: %v", err)
	}

	opts = append([]store.Option{store.WithFileSystem(mockFS), store.WithFileLockFactory(locks)}, opts...)
	s, err := store.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s, mockFS
}
