package application

import (
	"errors"
	"sort"

	enrichment "akenergy-data/internal/enrichment/domain"
)

// SelfGenerationUtilityID is the reserved identifier of the synthetic
// "Self Generation" utility assigned to communities with no electric
// utility. The library schema reserves 131 for it; it is never used by
// a real utility.
const SelfGenerationUtilityID = 131

// SelfGenerationName is the display name of the synthetic utility.
const SelfGenerationName = "Self Generation"

// GasReferenceConsumption is the fixed monthly usage at which the
// representative marginal gas price is read off the block structure.
// Working at a single point avoids carrying the whole rate structure
// into the dataset.
const GasReferenceConsumption = 130.0

// UtilityResolver selects the applicable electricity and gas utilities
// for each community and resolves the subsidy back-fill.
type UtilityResolver struct {
	utilities map[int]*enrichment.Utility
	links     map[int][]int
	misc      enrichment.MiscInfo
}

// NewUtilityResolver constructs a resolver over the utility table and
// the community-to-utility link table. The utility values are shared:
// subsidy resolution updates them in place.
func NewUtilityResolver(utilities []*enrichment.Utility, links map[int][]int, misc enrichment.MiscInfo) (*UtilityResolver, error) {
	if len(utilities) == 0 {
		return nil, errors.New("utility resolver: no utilities")
	}
	byID := make(map[int]*enrichment.Utility, len(utilities))
	for _, u := range utilities {
		if u == nil {
			return nil, errors.New("utility resolver: nil utility")
		}
		byID[u.ID] = u
	}
	return &UtilityResolver{utilities: byID, links: links, misc: misc}, nil
}

// electricFor returns the community's active electric utilities in
// presentation order: short name, then residential before commercial,
// then identifier.
func (r *UtilityResolver) electricFor(communityID int) []*enrichment.Utility {
	var result []*enrichment.Utility
	for _, utilityID := range r.links[communityID] {
		u, ok := r.utilities[utilityID]
		if !ok || !u.Active || u.Type != enrichment.UtilityTypeElectric {
			continue
		}
		result = append(result, u)
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.NameShort != b.NameShort {
			return a.NameShort < b.NameShort
		}
		if a.IsCommercial != b.IsCommercial {
			return !a.IsCommercial
		}
		return a.ID < b.ID
	})
	return result
}

// ElectricUtilities returns the (name, ID) pairs for a community, or
// the single synthetic self-generation entry when none are linked.
func (r *UtilityResolver) ElectricUtilities(communityID int) []enrichment.UtilityRef {
	elec := r.electricFor(communityID)
	if len(elec) == 0 {
		return []enrichment.UtilityRef{{Name: SelfGenerationName, ID: SelfGenerationUtilityID}}
	}
	refs := make([]enrichment.UtilityRef, 0, len(elec))
	for _, u := range elec {
		refs = append(refs, enrichment.UtilityRef{Name: u.Name, ID: u.ID})
	}
	return refs
}

// ResolveSubsidies back-fills the PCE subsidy onto rate structures that
// lack one. The source data only carries PCE on residential rate
// structures, but community buildings may be billed on the commercial
// structures of the same utility and still qualify, so each community's
// maximum PCE is written onto its linked structures that are missing
// one. The write lands on the shared utility record. That is wrong if
// one utility serves communities with genuinely different subsidy
// levels, which in this dataset only happens where the subsidy does not
// apply at all.
//
// Runs as its own pass before per-community assembly so that assembly
// stays read-only and order-independent.
func (r *UtilityResolver) ResolveSubsidies(communities []enrichment.Community) {
	for _, c := range communities {
		elec := r.electricFor(c.ID)
		var max *float64
		for _, u := range elec {
			if u.PCE != nil && (max == nil || *u.PCE > *max) {
				max = u.PCE
			}
		}
		if max == nil || *max <= 0 {
			continue
		}
		for _, u := range elec {
			if u.PCE == nil {
				value := *max
				u.PCE = &value
			}
		}
	}
}

// GasPrice computes the representative marginal gas price for a
// community: the first normalized tier at or beyond the reference
// consumption (or the unbounded tier), scaled by the regulatory
// surcharge multiplier when the utility charges it. The surcharge on
// gas is a fractional rate, applied multiplicatively rather than
// added per-unit. Returns nil when no active gas utility is linked or
// no qualifying tier carries a rate.
func (r *UtilityResolver) GasPrice(communityID int) *float64 {
	var gas []*enrichment.Utility
	for _, utilityID := range r.links[communityID] {
		u, ok := r.utilities[utilityID]
		if !ok || !u.Active || u.Type != enrichment.UtilityTypeGas {
			continue
		}
		gas = append(gas, u)
	}
	if len(gas) == 0 {
		return nil
	}
	// Prefer the residential structure, then the lowest identifier.
	sort.SliceStable(gas, func(i, j int) bool {
		a, b := gas[i], gas[j]
		if a.IsCommercial != b.IsCommercial {
			return !a.IsCommercial
		}
		return a.ID < b.ID
	})
	u := gas[0]

	multiplier := 1.0
	if u.ChargesRCC && r.misc.RegulatorySurchargeGas != nil {
		multiplier += *r.misc.RegulatorySurchargeGas
	}

	for _, block := range enrichment.NormalizeTariff(*u, nil) {
		if block.Threshold != nil && *block.Threshold < GasReferenceConsumption {
			continue
		}
		if block.Rate == nil {
			// Qualifying tier without a rate does not exist; keep walking.
			continue
		}
		price := *block.Rate * multiplier
		return &price
	}
	return nil
}

// Utilities returns the utility table in identifier order, after any
// subsidy resolution that has run. The additive charges are folded
// into each block rate, including the electric regulatory surcharge
// for utilities that charge it, so the published table carries
// effective rates instead of the raw block columns. The shared records
// keep their raw blocks; gas pricing reads those.
func (r *UtilityResolver) Utilities() []enrichment.Utility {
	ids := make([]int, 0, len(r.utilities))
	for id := range r.utilities {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	result := make([]enrichment.Utility, 0, len(ids))
	for _, id := range ids {
		u := *r.utilities[id]
		copy(u.Blocks[:], enrichment.NormalizeTariff(u, r.misc.RegulatorySurchargeElectric))
		result = append(result, u)
	}
	return result
}
