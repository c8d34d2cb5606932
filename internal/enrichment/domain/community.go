// Package enrichment holds the entities and calculations of the
// city-utility enrichment stage: tariff normalization, nearest-site
// resolution, subsidy and fuel-price propagation, and usage profiles.
package enrichment

// FuelPrices are the static per-unit fuel prices a community may carry.
// A nil field means no independent price is known.
type FuelPrices struct {
	Oil1     *float64
	Oil2     *float64
	Propane  *float64
	Birch    *float64
	Spruce   *float64
	Coal     *float64
	Steam    *float64
	HotWater *float64
}

// Community is one community row from the library extract. Only active
// communities with a latitude survive loading.
type Community struct {
	ID        int
	Name      string
	Latitude  *float64
	Longitude *float64

	ERHRegionID          *int64
	WAPRegionID          *int64
	ImprovementCostLevel *int64

	// FuelRefer marks that the community inherits its fuel prices from
	// FuelCityID instead of carrying its own.
	FuelRefer  bool
	FuelCityID int

	FuelPrices FuelPrices

	MunicipalSalesTax *float64
	BoroughSalesTax   *float64
}

// HasCoordinates reports whether nearest-site resolution can run.
func (c Community) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}
