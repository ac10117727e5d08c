package storage

import (
	"fmt"

	"github.com/arthur-debert/listings/types"
)

// sample returns n distinct valid records with varied field values.
func sample(n int) []types.Property {
	areas := []string{"Center", "Lozenets", "Mladost", "Studentski grad"}
	kinds := []string{"Apartment", "House", "Studio"}
	expositions := []string{"South", "North", "East-West"}

	ps := make([]types.Property, n)
	for i := range ps {
		ps[i] = types.Property{
			Ref:        1000 + i*7,
			Broker:     fmt.Sprintf("Broker %d", i%5),
			Type:       kinds[i%len(kinds)],
			Area:       areas[i%len(areas)],
			Exposition: expositions[i%len(expositions)],
			Price:      float64(50000+i*1250) + 0.25,
			TotalArea:  float64(40+i) + 0.5,
			Rooms:      1 + i%5,
			Floor:      i%9 - 1,
			Status:     types.Status(i % 3),
		}
	}
	return ps
}
