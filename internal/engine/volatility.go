package engine

import (
	"math"

	"github.com/yourorg/options-backtester/internal/model"
)

const (
	// DefaultVolLookback is the trailing bar window for realized volatility
	DefaultVolLookback = 30

	// volRiskPremium scales realized volatility toward implied, which trades
	// at a persistent premium to realized
	volRiskPremium = 1.15

	tradingDaysPerYear = 252
	minVolatility      = 0.10
	maxVolatility      = 1.50
	defaultVolatility  = 0.30
)

// EstimateVolatility approximates implied volatility from the realized
// volatility of the trailing bars: annualized sample standard deviation of
// log returns, scaled by the risk-premium factor and clamped to
// [0.10, 1.50]. With fewer than 2 usable returns it returns 0.30.
func EstimateVolatility(bars []model.PriceBar, lookback int) float64 {
	if lookback <= 0 {
		lookback = DefaultVolLookback
	}

	window := bars
	if len(window) > lookback+1 {
		window = window[len(window)-lookback-1:]
	}

	var returns []float64
	for i := 1; i < len(window); i++ {
		prev := window[i-1].Close
		cur := window[i].Close
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}

	if len(returns) < 2 {
		return defaultVolatility
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sqDiff float64
	for _, r := range returns {
		d := r - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(len(returns)-1))

	vol := stddev * math.Sqrt(tradingDaysPerYear) * volRiskPremium

	if vol < minVolatility {
		return minVolatility
	}
	if vol > maxVolatility {
		return maxVolatility
	}
	return vol
}
