package enrichment

// UtilityRef is a (name, identifier) pair presented to dataset users as
// one of a community's applicable electric utilities.
type UtilityRef struct {
	Name string
	ID   int
}

// EnrichedCommunity is the final denormalized community row. It is
// assembled once per run and never mutated afterwards.
type EnrichedCommunity struct {
	Community

	// ClimateSiteID is 0 and ClimateSiteName empty when the community
	// has no coordinates.
	ClimateSiteID   int
	ClimateSiteName string

	ElectricUtilities []UtilityRef

	// GasPrice is the representative marginal gas price at the reference
	// consumption, or nil when no gas utility serves the community.
	GasPrice *float64

	// AreaName and Hub come from the survey lookup join; AreaName is
	// empty when the community could not be matched.
	AreaName string
	Hub      bool

	UsageProfile [MonthsPerYear]float64
}
