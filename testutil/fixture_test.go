package testutil

import (
	"testing"

	"github.com/arthur-debert/listings/types"
)

func TestLoadFixture(t *testing.T) {
	f := LoadFixture(t)

	if len(f.Properties) != 12 {
		t.Fatalf("expected 12 properties, got %d", len(f.Properties))
	}
	if f.ByRef[3].Area != "Boyana" || f.ByRef[3].Status != types.Sold {
		t.Errorf("ref 3 = %+v", f.ByRef[3])
	}
	AssertRefs(t, f.WithStatus(types.Sold), 3, 5, 7)
	AssertRefs(t, f.WithStatus(types.Reserved), 2, 10)
}

func TestOpenSeeded(t *testing.T) {
	s, mockFS := OpenSeeded(t, types.DefaultConfig())

	if s.Len() != 12 {
		t.Errorf("Len = %d, want 12", s.Len())
	}
	if p, _ := s.Get(5); p.Status != types.Sold {
		t.Errorf("status not preserved: %s", p.Status)
	}
	if !mockFS.FileExists(types.DefaultConfig().RecoveryBinaryPath()) {
		t.Error("binary recovery file missing")
	}
}
