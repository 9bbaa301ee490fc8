package engine

import (
	"math"

	"github.com/yourorg/options-backtester/internal/model"
)

const (
	// RiskFreeRate is the constant annual risk-free rate used for discounting
	RiskFreeRate = 0.05

	// DeltaSearchTolerance stops the strike bisection once the computed delta
	// is within this distance of the target
	DeltaSearchTolerance = 0.001

	deltaSearchIterations = 50
	fallbackDelta         = 0.30
)

// normCDF is the standard normal cumulative distribution function
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// IntrinsicValue returns the exercise value of an option
func IntrinsicValue(optType model.OptionType, spot, strike float64) float64 {
	if optType == model.OptionCall {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// OptionPrice returns the Black-Scholes value of a call or put. Time to
// expiration is dte/365 years. Degenerate inputs (no time left, or
// non-positive spot/strike/vol) fall back to intrinsic value.
func OptionPrice(optType model.OptionType, spot, strike, dte, vol float64) float64 {
	if dte <= 0 || spot <= 0 || strike <= 0 || vol <= 0 {
		return IntrinsicValue(optType, spot, strike)
	}

	t := dte / 365.0
	d1 := (math.Log(spot/strike) + (RiskFreeRate+0.5*vol*vol)*t) / (vol * math.Sqrt(t))
	d2 := d1 - vol*math.Sqrt(t)
	discount := math.Exp(-RiskFreeRate * t)

	if optType == model.OptionCall {
		return spot*normCDF(d1) - strike*discount*normCDF(d2)
	}
	return strike*discount*normCDF(-d2) - spot*normCDF(-d1)
}

// Delta returns the Black-Scholes delta. At degenerate inputs it collapses to
// 1/0 for calls and 0/-1 for puts based on moneyness.
func Delta(optType model.OptionType, spot, strike, dte, vol float64) float64 {
	if dte <= 0 || spot <= 0 || strike <= 0 || vol <= 0 {
		if optType == model.OptionCall {
			if spot > strike {
				return 1
			}
			return 0
		}
		if spot < strike {
			return -1
		}
		return 0
	}

	t := dte / 365.0
	d1 := (math.Log(spot/strike) + (RiskFreeRate+0.5*vol*vol)*t) / (vol * math.Sqrt(t))

	if optType == model.OptionCall {
		return normCDF(d1)
	}
	return normCDF(d1) - 1
}

// StrikeIncrement returns the listing increment for a strike level
func StrikeIncrement(strike float64) float64 {
	switch {
	case strike < 25:
		return 0.5
	case strike < 50:
		return 1
	case strike < 200:
		return 2.5
	default:
		return 5
	}
}

// SnapStrike rounds a raw strike to the nearest listed increment
func SnapStrike(strike float64) float64 {
	incr := StrikeIncrement(strike)
	return math.Round(strike/incr) * incr
}

// strikeForDelta bisects over [0.5*spot, 1.5*spot] for the strike whose delta
// magnitude matches the target. Call delta falls as the strike rises; put
// delta magnitude rises with it.
func strikeForDelta(optType model.OptionType, spot, dte, vol, target float64) float64 {
	lo := 0.5 * spot
	hi := 1.5 * spot
	mid := spot

	for i := 0; i < deltaSearchIterations; i++ {
		mid = (lo + hi) / 2
		d := math.Abs(Delta(optType, spot, mid, dte, vol))
		if math.Abs(d-target) < DeltaSearchTolerance {
			break
		}

		tooHigh := d > target // delta magnitude above target
		if optType == model.OptionCall {
			if tooHigh {
				lo = mid
			} else {
				hi = mid
			}
		} else {
			if tooHigh {
				hi = mid
			} else {
				lo = mid
			}
		}
	}

	return mid
}

// ResolveStrike resolves a leg's strike from its selection method at the
// given spot and volatility, snapped to the listing grid.
func ResolveStrike(leg model.LegConfig, spot, dte, vol float64) float64 {
	var raw float64

	switch leg.StrikeMethod {
	case model.StrikeByDelta:
		target := leg.StrikeValue
		if target > 1 {
			target /= 100 // accept 30 as 0.30
		}
		raw = strikeForDelta(leg.OptionType, spot, dte, vol, target)
	case model.StrikeByPercentOTM:
		pct := leg.StrikeValue / 100
		if leg.OptionType == model.OptionCall {
			raw = spot * (1 + pct)
		} else {
			raw = spot * (1 - pct)
		}
	case model.StrikeByPriceOffset:
		if leg.OptionType == model.OptionCall {
			raw = spot + leg.StrikeValue
		} else {
			raw = spot - leg.StrikeValue
		}
	default:
		// premium selection is not modeled; fall back to delta 30
		raw = strikeForDelta(leg.OptionType, spot, dte, vol, fallbackDelta)
	}

	return SnapStrike(raw)
}
