package enrichment

// Utility types in the library extract.
const (
	UtilityTypeElectric = 1
	UtilityTypeGas      = 2
)

// TariffBlock is one consumption tier: the threshold up to which the
// marginal rate applies. A nil threshold marks the unbounded last tier;
// a nil rate means the tier does not exist.
type TariffBlock struct {
	Threshold *float64
	Rate      *float64
}

// Utility is one utility rate structure from the library extract.
type Utility struct {
	ID   int
	Name string
	// NameShort is the first six characters of Name, used for the
	// presentation ordering of a community's electric utilities.
	NameShort    string
	Type         int
	Active       bool
	IsCommercial bool

	Blocks [5]TariffBlock

	FuelSurcharge      *float64
	PurchasedEnergyAdj *float64
	// ChargesRCC marks utilities that pass the regulatory cost charge on
	// to customers.
	ChargesRCC bool

	// PCE is the power cost equalization subsidy. Only residential rate
	// structures carry it in the source data; commercial structures are
	// back-filled during subsidy resolution.
	PCE *float64
}

// NormalizeTariff folds the additive charges into each present rate:
// fuel surcharge, purchased-energy adjustment, and the regulatory
// surcharge when the utility charges it. Missing additive terms count
// as zero; a missing rate leaves the tier absent. Tier order is
// preserved.
func NormalizeTariff(u Utility, regulatorySurcharge *float64) []TariffBlock {
	adjust := orZero(u.FuelSurcharge) + orZero(u.PurchasedEnergyAdj)
	if u.ChargesRCC {
		adjust += orZero(regulatorySurcharge)
	}
	blocks := make([]TariffBlock, 0, len(u.Blocks))
	for _, b := range u.Blocks {
		eff := TariffBlock{Threshold: b.Threshold}
		if b.Rate != nil {
			rate := *b.Rate + adjust
			eff.Rate = &rate
		}
		blocks = append(blocks, eff)
	}
	return blocks
}

// orZero substitutes zero for a missing value.
func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float64 returns a pointer to v, for literals.
func Float64(v float64) *float64 {
	return &v
}
