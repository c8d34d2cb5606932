package enrichment

import "errors"

var (
	// ErrEmptySiteCatalog is returned when nearest-site resolution runs
	// without any climate sites.
	ErrEmptySiteCatalog = errors.New("enrichment: empty climate site catalog")
	// ErrReferralTarget is returned when a fuel-price referral points at
	// a community that does not exist in the resolved set.
	ErrReferralTarget = errors.New("enrichment: fuel referral target not found")
	// ErrReferralCycle is returned when fuel-price referrals form a
	// cycle, including a community referring to itself.
	ErrReferralCycle = errors.New("enrichment: fuel referral cycle")
	// ErrNoUsageRecords is returned when the usage survey table is empty.
	ErrNoUsageRecords = errors.New("enrichment: no usage records")
)
