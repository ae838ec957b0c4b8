// mapview/counts.go
package mapview

import (
	"sort"

	"github.com/PhilHen99/InplayBasketSourceFinder/models"
	"github.com/PhilHen99/InplayBasketSourceFinder/utils"
)

// CountryCount is the number of teams in one country.
type CountryCount struct {
	Country string
	Count   int
}

// CountryCounts counts teams per non-empty country, sorted by count
// descending and then by country name.
func CountryCounts(teams []models.Team) []CountryCount {
	byCountry := make(map[string]int)
	for _, t := range teams {
		if t.Country == "" {
			continue
		}
		byCountry[t.Country]++
	}

	counts := make([]CountryCount, 0, len(byCountry))
	for c, n := range byCountry {
		counts = append(counts, CountryCount{Country: c, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Country < counts[j].Country
	})
	return counts
}

// Marker is one rendered country marker.
type Marker struct {
	Country string  `json:"country"`
	Count   int     `json:"count"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Link    string  `json:"link"`
}

// BuildMarkers keeps the top n countries and resolves their coordinates.
// Countries missing from coords are skipped, so fewer than n markers may result.
func BuildMarkers(counts []CountryCount, n int, coords *utils.CountryCoordinates) []Marker {
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	markers := make([]Marker, 0, len(counts))
	for _, c := range counts {
		ll, ok := coords.Lookup(c.Country)
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			Country: c.Country,
			Count:   c.Count,
			Lat:     ll[0],
			Lng:     ll[1],
			Link:    CountryLink(c.Country),
		})
	}
	return markers
}
