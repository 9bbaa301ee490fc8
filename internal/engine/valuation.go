package engine

import (
	"github.com/yourorg/options-backtester/internal/model"
)

// WalkStrategyValue reprices a single strategy across an entire bar series:
// strikes and expirations are resolved once at the first bar and the combined
// mark value is recomputed at every subsequent close. There is no trade
// lifecycle here; this is a standalone valuation utility, deliberately kept
// apart from the simulator's state machine.
func WalkStrategyValue(bars []model.PriceBar, legs []model.LegConfig) []model.ValuationPoint {
	if len(bars) == 0 || len(legs) == 0 {
		return nil
	}

	first := bars[0]
	entryDay := DateOnly(first.Date)
	entryVol := EstimateVolatility(bars[:1], DefaultVolLookback)

	resolved := make([]model.TradeLeg, 0, len(legs))
	for _, legCfg := range legs {
		exp := ResolveExpiration(entryDay, legCfg.DTE)
		dte := CalendarDays(entryDay, exp)
		strike := ResolveStrike(legCfg, first.Close, float64(dte), entryVol)
		resolved = append(resolved, model.TradeLeg{
			Config:         legCfg,
			ResolvedStrike: strike,
			DTEAtEntry:     dte,
		})
	}

	points := make([]model.ValuationPoint, 0, len(bars))
	for i, bar := range bars {
		day := DateOnly(bar.Date)
		vol := EstimateVolatility(bars[:i+1], DefaultVolLookback)
		elapsed := CalendarDays(entryDay, day)

		prices := make([]float64, len(resolved))
		for j, leg := range resolved {
			dte := float64(leg.DTEAtEntry - elapsed)
			prices[j] = OptionPrice(leg.Config.OptionType, bar.Close, leg.ResolvedStrike, dte, vol)
		}

		points = append(points, model.ValuationPoint{
			Date:            day,
			UnderlyingPrice: bar.Close,
			StrategyValue:   netValue(resolved, prices),
		})
	}

	return points
}
