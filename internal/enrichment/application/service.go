// Package application orchestrates the city-utility enrichment stage:
// subsidy resolution, nearest-site lookup, utility and gas-price
// selection, fuel-price referral resolution and usage-profile
// assignment over every community in the library extract.
package application

import (
	"context"
	"errors"
	"log"

	enrichment "akenergy-data/internal/enrichment/domain"
)

// Result is the output of one enrichment run.
type Result struct {
	Communities []enrichment.EnrichedCommunity
	// Utilities is the utility table with the subsidy back-fill applied.
	Utilities []enrichment.Utility
	// MiscInfo passes through unchanged.
	MiscInfo enrichment.MiscInfo
	// Unmatched lists below-threshold fuzzy matches for curation.
	Unmatched []UnmatchedName
}

// Service runs the enrichment pipeline over the loaded tables.
type Service struct {
	sites    []enrichment.ClimateSite
	resolver *UtilityResolver
	usage    *UsageAssigner
	misc     enrichment.MiscInfo
	logger   *log.Logger
}

// NewService constructs the enrichment service.
func NewService(
	sites []enrichment.ClimateSite,
	resolver *UtilityResolver,
	usage *UsageAssigner,
	misc enrichment.MiscInfo,
	logger *log.Logger,
) (*Service, error) {
	if resolver == nil {
		return nil, errors.New("enrichment service: nil utility resolver")
	}
	if usage == nil {
		return nil, errors.New("enrichment service: nil usage assigner")
	}
	if logger == nil {
		return nil, errors.New("enrichment service: nil logger")
	}
	return &Service{
		sites:    sites,
		resolver: resolver,
		usage:    usage,
		misc:     misc,
		logger:   logger,
	}, nil
}

// Run enriches every community. The input slice is not mutated; the
// run either completes fully or returns an error with nothing emitted.
func (s *Service) Run(ctx context.Context, communities []enrichment.Community) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Subsidy resolution mutates the shared utility records, so it runs
	// to completion before the read-only per-community assembly.
	s.logger.Printf("resolving subsidies for %d communities", len(communities))
	s.resolver.ResolveSubsidies(communities)

	resolved := make([]enrichment.Community, len(communities))
	copy(resolved, communities)
	if err := ResolveFuelReferrals(resolved); err != nil {
		return nil, err
	}
	gasPrices := s.resolveGasPrices(resolved)

	s.logger.Printf("enriching %d communities against %d climate sites", len(resolved), len(s.sites))
	enriched := make([]enrichment.EnrichedCommunity, 0, len(resolved))
	for _, c := range resolved {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row := enrichment.EnrichedCommunity{Community: c}

		if c.HasCoordinates() {
			site, err := enrichment.NearestSite(*c.Latitude, *c.Longitude, s.sites)
			if err != nil {
				return nil, err
			}
			row.ClimateSiteID = site.ID
			row.ClimateSiteName = site.Label()
		}

		row.ElectricUtilities = s.resolver.ElectricUtilities(c.ID)
		row.GasPrice = gasPrices[c.ID]

		row.AreaName, row.Hub = s.usage.Classify(c.Name)
		row.UsageProfile = s.usage.Profile(c.Name, row.AreaName, row.Hub)

		enriched = append(enriched, row)
	}

	return &Result{
		Communities: enriched,
		Utilities:   s.resolver.Utilities(),
		MiscInfo:    s.misc,
		Unmatched:   s.usage.Unmatched(),
	}, nil
}

// resolveGasPrices computes each community's gas price from its own
// utilities, then lets referring communities inherit the price of
// their referral chain's terminal community, the same transfer the
// fuel prices get. Call only after ResolveFuelReferrals has validated
// the referral graph.
func (s *Service) resolveGasPrices(communities []enrichment.Community) map[int]*float64 {
	prices := make(map[int]*float64, len(communities))
	byID := make(map[int]enrichment.Community, len(communities))
	for _, c := range communities {
		prices[c.ID] = s.resolver.GasPrice(c.ID)
		byID[c.ID] = c
	}
	for _, c := range communities {
		if !c.FuelRefer {
			continue
		}
		target := c
		for target.FuelRefer {
			target = byID[target.FuelCityID]
		}
		prices[c.ID] = prices[target.ID]
	}
	return prices
}
