package query

import "github.com/arthur-debert/listings/types"

// SortByPrice reorders ps in place by price using an in-place
// partition-exchange sort. Records with equal prices are ordered by
// ascending Ref, which keeps the result deterministic and makes sorting
// an already sorted slice a no-op.
func SortByPrice(ps []types.Property, ascending bool) {
	quickSort(ps, 0, len(ps)-1, ascending)
}

func quickSort(ps []types.Property, low, high int, ascending bool) {
	if low >= high {
		return
	}
	p := partition(ps, low, high, ascending)
	quickSort(ps, low, p-1, ascending)
	quickSort(ps, p+1, high, ascending)
}

// partition uses the last element of the range as pivot, moves every
// element that belongs before it into a growing prefix and then swaps
// the pivot into its final position, which it returns.
func partition(ps []types.Property, low, high int, ascending bool) int {
	pivot := ps[high]
	i := low
	for j := low; j < high; j++ {
		if before(ps[j], pivot, ascending) {
			ps[i], ps[j] = ps[j], ps[i]
			i++
		}
	}
	ps[i], ps[high] = ps[high], ps[i]
	return i
}

func before(a, b types.Property, ascending bool) bool {
	if a.Price != b.Price {
		if ascending {
			return a.Price < b.Price
		}
		return a.Price > b.Price
	}
	return a.Ref < b.Ref
}
