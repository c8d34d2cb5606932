package application

import (
	"fmt"

	enrichment "akenergy-data/internal/enrichment/domain"
)

// referral resolution states.
const (
	referralUnvisited = iota
	referralInProgress
	referralResolved
)

// ResolveFuelReferrals copies the full set of fuel prices from each
// referral target onto the referring community. Referral chains are
// followed to their terminal community, so the copy order does not
// matter; a missing target or a cycle (including self-reference) fails
// the run.
func ResolveFuelReferrals(communities []enrichment.Community) error {
	index := make(map[int]int, len(communities))
	for i, c := range communities {
		index[c.ID] = i
	}
	state := make(map[int]int, len(communities))

	var resolve func(i int) error
	resolve = func(i int) error {
		c := &communities[i]
		switch state[c.ID] {
		case referralResolved:
			return nil
		case referralInProgress:
			return fmt.Errorf("%w: community %d (%s)", enrichment.ErrReferralCycle, c.ID, c.Name)
		}
		state[c.ID] = referralInProgress
		if c.FuelRefer {
			target, ok := index[c.FuelCityID]
			if !ok {
				return fmt.Errorf("%w: community %d (%s) refers to %d", enrichment.ErrReferralTarget, c.ID, c.Name, c.FuelCityID)
			}
			if communities[target].ID == c.ID {
				return fmt.Errorf("%w: community %d (%s) refers to itself", enrichment.ErrReferralCycle, c.ID, c.Name)
			}
			if err := resolve(target); err != nil {
				return err
			}
			c.FuelPrices = communities[target].FuelPrices
		}
		state[c.ID] = referralResolved
		return nil
	}

	for i := range communities {
		if err := resolve(i); err != nil {
			return err
		}
	}
	return nil
}
