package enrichment

// MonthsPerYear sizes the monthly usage profiles.
const MonthsPerYear = 12

// NonHubLabel marks a usage record that aggregates the non-hub
// communities of an area instead of a single hub community.
const NonHubLabel = "non hub"

// AreaLookup links a community name to its geographic area and hub
// classification.
type AreaLookup struct {
	City       string
	CensusArea string
	Hub        bool
}

// UsageRecord holds average monthly residential electricity use for
// either a hub community (City set to its name) or the non-hub
// remainder of an area (City set to NonHubLabel).
type UsageRecord struct {
	City       string
	CensusArea string
	Monthly    [MonthsPerYear]float64
}

// IsHub reports whether the record describes a single hub community.
func (r UsageRecord) IsHub() bool {
	return r.City != NonHubLabel
}

// AnnualAverage is the mean of the twelve monthly values.
func (r UsageRecord) AnnualAverage() float64 {
	var sum float64
	for _, v := range r.Monthly {
		sum += v
	}
	return sum / MonthsPerYear
}

// DefaultUsageProfile averages, component-wise across the twelve
// months, every hub record whose annual average exceeds minAnnual.
// Communities without survey coverage fall back to this profile; the
// cutoff keeps small outliers from dragging it down.
func DefaultUsageProfile(records []UsageRecord, minAnnual float64) ([MonthsPerYear]float64, error) {
	var sums [MonthsPerYear]float64
	count := 0
	for _, rec := range records {
		if !rec.IsHub() || rec.AnnualAverage() <= minAnnual {
			continue
		}
		for i, v := range rec.Monthly {
			sums[i] += v
		}
		count++
	}
	if count == 0 {
		return sums, ErrNoUsageRecords
	}
	for i := range sums {
		sums[i] /= float64(count)
	}
	return sums, nil
}
