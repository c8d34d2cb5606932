package enrichment

import (
	"fmt"

	"akenergy-data/internal/geo"
)

// ClimateSite is a reference climate site from the processed catalog.
type ClimateSite struct {
	ID        int
	City      string
	State     string
	Latitude  float64
	Longitude float64

	AvgTemp           float64
	AvgHumidity       float64
	AvgWindSpeed      float64
	HeatingDesignTemp float64
}

// Label returns the display name attached to enriched communities.
func (s ClimateSite) Label() string {
	return fmt.Sprintf("%s, %s", s.City, s.State)
}

// NearestSite returns the catalog site closest to (lat, lon) by
// great-circle distance. The first minimum wins, so catalog order makes
// the result stable. An empty catalog is an error.
func NearestSite(lat, lon float64, catalog []ClimateSite) (ClimateSite, error) {
	if len(catalog) == 0 {
		return ClimateSite{}, ErrEmptySiteCatalog
	}
	best := catalog[0]
	bestDist := geo.Haversine(lat, lon, best.Latitude, best.Longitude)
	for _, site := range catalog[1:] {
		if d := geo.Haversine(lat, lon, site.Latitude, site.Longitude); d < bestDist {
			best = site
			bestDist = d
		}
	}
	return best, nil
}
