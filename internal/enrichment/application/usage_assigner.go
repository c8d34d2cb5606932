package application

import (
	"errors"
	"log"

	enrichment "akenergy-data/internal/enrichment/domain"
	"akenergy-data/internal/matching"
)

// DefaultProfileMinAnnual is the annual-average cutoff for hub records
// contributing to the default usage profile.
const DefaultProfileMinAnnual = 500.0

// NameMatcher finds the best candidate for a query name with a 0..100
// confidence score.
type NameMatcher interface {
	ExtractOne(query string, pool []string) matching.Match
}

// UnmatchedName records a below-threshold fuzzy match for manual data
// curation.
type UnmatchedName struct {
	Query   string
	Closest string
	Score   int
}

// UsageAssigner attaches an area classification and a monthly
// electricity usage profile to each community.
type UsageAssigner struct {
	matcher   NameMatcher
	threshold int
	logger    *log.Logger

	lookups      []enrichment.AreaLookup
	lookupNames  []string
	lookupByCity map[string]enrichment.AreaLookup

	hubNames  []string
	hubByName map[string][enrichment.MonthsPerYear]float64

	areaNames  []string
	areaByName map[string][enrichment.MonthsPerYear]float64

	defaultProfile [enrichment.MonthsPerYear]float64

	unmatched []UnmatchedName
}

// NewUsageAssigner builds the assigner from the city-to-area lookup and
// the usage survey records, computing the default profile once.
func NewUsageAssigner(
	matcher NameMatcher,
	threshold int,
	lookups []enrichment.AreaLookup,
	records []enrichment.UsageRecord,
	logger *log.Logger,
) (*UsageAssigner, error) {
	if matcher == nil {
		return nil, errors.New("usage assigner: nil matcher")
	}
	if logger == nil {
		return nil, errors.New("usage assigner: nil logger")
	}
	defaultProfile, err := enrichment.DefaultUsageProfile(records, DefaultProfileMinAnnual)
	if err != nil {
		return nil, err
	}

	a := &UsageAssigner{
		matcher:        matcher,
		threshold:      threshold,
		logger:         logger,
		lookups:        lookups,
		lookupByCity:   make(map[string]enrichment.AreaLookup, len(lookups)),
		hubByName:      make(map[string][enrichment.MonthsPerYear]float64),
		areaByName:     make(map[string][enrichment.MonthsPerYear]float64),
		defaultProfile: defaultProfile,
	}
	for _, lookup := range lookups {
		a.lookupNames = append(a.lookupNames, lookup.City)
		a.lookupByCity[lookup.City] = lookup
	}
	for _, rec := range records {
		if rec.IsHub() {
			if _, ok := a.hubByName[rec.City]; !ok {
				a.hubNames = append(a.hubNames, rec.City)
				a.hubByName[rec.City] = rec.Monthly
			}
			continue
		}
		if _, ok := a.areaByName[rec.CensusArea]; !ok {
			a.areaNames = append(a.areaNames, rec.CensusArea)
			a.areaByName[rec.CensusArea] = rec.Monthly
		}
	}
	return a, nil
}

// DefaultProfile returns the computed fallback profile.
func (a *UsageAssigner) DefaultProfile() [enrichment.MonthsPerYear]float64 {
	return a.defaultProfile
}

// Unmatched returns the below-threshold matches seen so far.
func (a *UsageAssigner) Unmatched() []UnmatchedName {
	return a.unmatched
}

// Classify fuzzy-joins a community name to the city-to-area lookup and
// returns its area name and hub flag. A below-threshold match leaves
// the community unclassified (non-hub, empty area) and is logged for
// curation.
func (a *UsageAssigner) Classify(communityName string) (string, bool) {
	match := a.matcher.ExtractOne(communityName, a.lookupNames)
	if match.Score < a.threshold {
		a.noMatch(communityName, match)
		return "", false
	}
	lookup := a.lookupByCity[match.Value]
	return lookup.CensusArea, lookup.Hub
}

// Profile returns the monthly usage profile for a community given its
// classification: hub communities match their own name against hub
// records, non-hub communities match their area against the non-hub
// aggregates; either falls back to the default profile below the
// threshold.
func (a *UsageAssigner) Profile(communityName, areaName string, hub bool) [enrichment.MonthsPerYear]float64 {
	if hub {
		match := a.matcher.ExtractOne(communityName, a.hubNames)
		if match.Score >= a.threshold {
			return a.hubByName[match.Value]
		}
		a.noMatch(communityName, match)
		return a.defaultProfile
	}

	match := a.matcher.ExtractOne(areaName, a.areaNames)
	if match.Score >= a.threshold {
		return a.areaByName[match.Value]
	}
	// Typically communities outside the survey's coverage; they tend to
	// have relatively high usage, which the default profile reflects.
	if areaName != "" {
		a.noMatch(areaName, match)
	}
	return a.defaultProfile
}

func (a *UsageAssigner) noMatch(query string, match matching.Match) {
	a.unmatched = append(a.unmatched, UnmatchedName{Query: query, Closest: match.Value, Score: match.Score})
	a.logger.Printf("no usage match for %q: closest %q (%d)", query, match.Value, match.Score)
}
