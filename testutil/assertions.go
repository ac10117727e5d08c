package testutil

import (
	"testing"

	"github.com/arthur-debert/listings/types"
	"github.com/google/go-cmp/cmp"
)

// Refs returns the ref numbers of ps in order.
func Refs(ps []types.Property) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.Ref
	}
	return out
}

// AssertRefs fails the test unless ps holds exactly want, in order.
func AssertRefs(t testing.TB, ps []types.Property, want ...int) {
	t.Helper()
	if want == nil {
		want = []int{}
	}
	if diff := cmp.Diff(want, Refs(ps)); diff != "" {
		t.Errorf("refs mismatch (-want +got):\n%s", diff)
	}
}

// AssertPricesOrdered fails the test unless ps is sorted by price in
// the given direction.
func AssertPricesOrdered(t testing.TB, ps []types.Property, ascending bool) {
	t.Helper()
	for i := 1; i < len(ps); i++ {
		a, b := ps[i-1].Price, ps[i].Price
		if (ascending && a > b) || (!ascending && a < b) {
			t.Errorf("position %d: price %v before %v (ascending=%v)", i, a, b, ascending)
			return
		}
	}
}
