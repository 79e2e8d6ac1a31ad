// Package commission recomputes partner commission ledgers from first
// principles: fixed rate tables applied to raw subscription history, never
// stored legacy totals.
package commission

import (
	"math"

	"github.com/kwatalab/bsm/internal/types"
)

// tierBase is the commission base amount per subscription type, in the
// platform currency (XAF).
var tierBase = map[types.SubscriptionType]float64{
	types.SubMonthly:   1500,
	types.SubQuarterly: 4000,
	types.SubYearly:    15000,
	types.SubLifetime:  25000,
}

// packRate is the commission percentage per partner pack tier.
var packRate = map[types.PartnerPack]float64{
	types.PackBronze: 0.10,
	types.PackSilver: 0.15,
	types.PackGold:   0.25,
}

// Amount computes one commission: round(tierBase[subType] * packRate[pack]).
// Unknown subscription types or packs earn nothing.
func Amount(subType types.SubscriptionType, pack types.PartnerPack) float64 {
	base, ok := tierBase[subType]
	if !ok {
		return 0
	}
	rate, ok := packRate[pack]
	if !ok {
		return 0
	}
	return math.Round(base * rate)
}
