package engine

import (
	"math"

	"github.com/yourorg/options-backtester/internal/model"
)

const contractMultiplier = 100

// BuyingPower returns the capital required to hold a trade's legs at the
// given spot price.
//
// A vertical spread (long and short legs of the same option type) is
// defined-risk: the requirement is strike width times the smaller quantity,
// and it supersedes every other leg's computation. Otherwise each naked short
// leg requires the greater of the two standard margin methods and long legs
// require nothing beyond their debit.
func BuyingPower(legs []model.TradeLeg, spot float64) float64 {
	if long, short, ok := verticalPair(legs); ok {
		width := math.Abs(long.ResolvedStrike - short.ResolvedStrike)
		qty := long.Config.Quantity
		if short.Config.Quantity < qty {
			qty = short.Config.Quantity
		}
		return width * contractMultiplier * float64(qty)
	}

	var total float64
	for _, leg := range legs {
		if leg.Config.Direction != model.DirectionSell {
			continue
		}
		total += nakedMargin(leg, spot)
	}
	return total
}

// verticalPair finds a long and short leg of the same option type
func verticalPair(legs []model.TradeLeg) (long, short model.TradeLeg, ok bool) {
	for i := range legs {
		for j := range legs {
			if i == j {
				continue
			}
			if legs[i].Config.OptionType != legs[j].Config.OptionType {
				continue
			}
			if legs[i].Config.Direction == model.DirectionBuy && legs[j].Config.Direction == model.DirectionSell {
				return legs[i], legs[j], true
			}
		}
	}
	return model.TradeLeg{}, model.TradeLeg{}, false
}

// nakedMargin is max of: 20% of underlying minus the OTM amount plus premium,
// or 10% of the strike (puts) / underlying (calls) plus premium.
func nakedMargin(leg model.TradeLeg, spot float64) float64 {
	qty := float64(leg.Config.Quantity)
	premium := leg.EntryPrice * qty * contractMultiplier

	var otm float64
	if leg.Config.OptionType == model.OptionCall {
		otm = math.Max(leg.ResolvedStrike-spot, 0)
	} else {
		otm = math.Max(spot-leg.ResolvedStrike, 0)
	}

	methodA := 0.20*spot*qty*contractMultiplier - otm*qty*contractMultiplier + premium

	ref := spot
	if leg.Config.OptionType == model.OptionPut {
		ref = leg.ResolvedStrike
	}
	methodB := 0.10*ref*qty*contractMultiplier + premium

	return math.Max(methodA, methodB)
}
