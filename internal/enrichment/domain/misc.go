package enrichment

// MiscInfo carries the single miscellaneous-information row of the
// library extract. The two regulatory surcharge rates feed tariff
// normalization; the raw row passes through to the outputs unchanged.
type MiscInfo struct {
	// RegulatorySurchargeElectric is added per-unit to electric rates of
	// utilities that charge the regulatory cost charge.
	RegulatorySurchargeElectric *float64
	// RegulatorySurchargeGas is a fractional rate applied
	// multiplicatively to gas prices of utilities that charge it.
	RegulatorySurchargeGas *float64

	// Raw holds every column of the source row keyed by column name.
	Raw map[string]any
}
