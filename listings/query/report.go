package query

import (
	"fmt"

	"github.com/arthur-debert/listings/types"
)

// MostExpensiveInArea returns the highest priced property in area. When
// several share the top price the first one in collection order wins.
func MostExpensiveInArea(ps []types.Property, area string) (types.Property, error) {
	var (
		best  types.Property
		found bool
	)
	for _, p := range ps {
		if p.Area != area {
			continue
		}
		if !found || p.Price > best.Price {
			best, found = p, true
		}
	}
	if !found {
		return types.Property{}, fmt.Errorf("%w: area %q", types.ErrNoMatch, area)
	}
	return best, nil
}

// AreaAverage is the result of AveragePriceInArea.
type AreaAverage struct {
	Area    string  `json:"area" yaml:"area"`
	Count   int     `json:"count" yaml:"count"`
	Total   float64 `json:"total" yaml:"total"`
	Average float64 `json:"average" yaml:"average"`
}

// AveragePriceInArea computes the arithmetic mean price of the
// properties in area.
func AveragePriceInArea(ps []types.Property, area string) (AreaAverage, error) {
	res := AreaAverage{Area: area}
	for _, p := range ps {
		if p.Area == area {
			res.Total += p.Price
			res.Count++
		}
	}
	if res.Count == 0 {
		return res, fmt.Errorf("%w: area %q", types.ErrNoMatch, area)
	}
	res.Average = res.Total / float64(res.Count)
	return res, nil
}

// BrokerSales summarises how many of a broker's listings are sold.
type BrokerSales struct {
	Broker  string  `json:"broker" yaml:"broker"`
	Total   int     `json:"total" yaml:"total"`
	Sold    int     `json:"sold" yaml:"sold"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// SoldPercentageByBroker groups the collection by broker, in order of
// first appearance, and reports the sold share of each group.
func SoldPercentageByBroker(ps []types.Property) ([]BrokerSales, error) {
	if len(ps) == 0 {
		return nil, fmt.Errorf("%w: collection is empty", types.ErrNoMatch)
	}

	index := make(map[string]int)
	var out []BrokerSales
	for _, p := range ps {
		i, seen := index[p.Broker]
		if !seen {
			i = len(out)
			index[p.Broker] = i
			out = append(out, BrokerSales{Broker: p.Broker})
		}
		out[i].Total++
		if p.Status == types.Sold {
			out[i].Sold++
		}
	}

	for i := range out {
		if out[i].Total > 0 {
			out[i].Percent = float64(out[i].Sold) / float64(out[i].Total) * 100
		}
	}
	return out, nil
}
