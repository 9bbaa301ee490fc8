package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/options-backtester/internal/model"
)

func TestPutCallParity(t *testing.T) {
	tests := []struct {
		name   string
		spot   float64
		strike float64
		dte    float64
		vol    float64
	}{
		{"atm", 100, 100, 30, 0.25},
		{"otm call", 100, 110, 45, 0.20},
		{"itm call", 100, 90, 60, 0.40},
		{"high vol", 50, 55, 90, 1.20},
		{"low vol", 250, 240, 14, 0.12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := OptionPrice(model.OptionCall, tt.spot, tt.strike, tt.dte, tt.vol)
			put := OptionPrice(model.OptionPut, tt.spot, tt.strike, tt.dte, tt.vol)

			discounted := tt.strike * math.Exp(-RiskFreeRate*tt.dte/365.0)
			assert.InDelta(t, tt.spot-discounted, call-put, 1e-6,
				"put-call parity must hold independent of volatility")
		})
	}
}

func TestOptionPriceConvergesToIntrinsicNearExpiry(t *testing.T) {
	call := OptionPrice(model.OptionCall, 105, 100, 0.001, 0.30)
	assert.InDelta(t, 5.0, call, 0.01)

	put := OptionPrice(model.OptionPut, 95, 100, 0.001, 0.30)
	assert.InDelta(t, 5.0, put, 0.01)

	otmCall := OptionPrice(model.OptionCall, 95, 100, 0.001, 0.30)
	assert.InDelta(t, 0.0, otmCall, 0.01)
}

func TestOptionPriceDegenerateInputs(t *testing.T) {
	// expired
	assert.Equal(t, 5.0, OptionPrice(model.OptionCall, 105, 100, 0, 0.30))
	assert.Equal(t, 5.0, OptionPrice(model.OptionPut, 95, 100, -3, 0.30))
	// zero vol
	assert.Equal(t, 5.0, OptionPrice(model.OptionCall, 105, 100, 30, 0))
	// nonsense spot
	assert.Equal(t, 100.0, OptionPrice(model.OptionPut, 0, 100, 30, 0.30))
}

func TestDeltaBounds(t *testing.T) {
	spots := []float64{20, 50, 100, 400}
	vols := []float64{0.10, 0.30, 0.80, 1.50}
	dtes := []float64{1, 30, 180}

	for _, s := range spots {
		for _, v := range vols {
			for _, d := range dtes {
				for _, k := range []float64{s * 0.7, s, s * 1.3} {
					callDelta := Delta(model.OptionCall, s, k, d, v)
					putDelta := Delta(model.OptionPut, s, k, d, v)

					assert.GreaterOrEqual(t, callDelta, 0.0)
					assert.LessOrEqual(t, callDelta, 1.0)
					assert.GreaterOrEqual(t, putDelta, -1.0)
					assert.LessOrEqual(t, putDelta, 0.0)

					// call and put delta differ by exactly 1
					assert.InDelta(t, 1.0, callDelta-putDelta, 1e-9)
				}
			}
		}
	}
}

func TestDeltaDegenerateInputs(t *testing.T) {
	assert.Equal(t, 1.0, Delta(model.OptionCall, 110, 100, 0, 0.30))
	assert.Equal(t, 0.0, Delta(model.OptionCall, 90, 100, 0, 0.30))
	assert.Equal(t, -1.0, Delta(model.OptionPut, 90, 100, 0, 0.30))
	assert.Equal(t, 0.0, Delta(model.OptionPut, 110, 100, 0, 0.30))
}

func TestStrikeForDeltaConverges(t *testing.T) {
	tests := []struct {
		name    string
		optType model.OptionType
		target  float64
	}{
		{"call delta 30", model.OptionCall, 0.30},
		{"call delta 50", model.OptionCall, 0.50},
		{"call delta 16", model.OptionCall, 0.16},
		{"put delta 30", model.OptionPut, 0.30},
		{"put delta 20", model.OptionPut, 0.20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strike := strikeForDelta(tt.optType, 100, 30, 0.25, tt.target)
			got := math.Abs(Delta(tt.optType, 100, strike, 30, 0.25))
			assert.Less(t, math.Abs(got-tt.target), DeltaSearchTolerance,
				"search must converge before snapping")
		})
	}
}

func TestResolveStrikeNormalizesPercentageDelta(t *testing.T) {
	fractional := model.LegConfig{
		Direction: model.DirectionSell, OptionType: model.OptionPut,
		Quantity: 1, StrikeMethod: model.StrikeByDelta, StrikeValue: 0.30, DTE: 30,
	}
	percentage := fractional
	percentage.StrikeValue = 30

	a := ResolveStrike(fractional, 100, 30, 0.25)
	b := ResolveStrike(percentage, 100, 30, 0.25)
	assert.Equal(t, a, b, "delta 0.30 and delta 30 must resolve identically")
}

func TestResolveStrikeMethods(t *testing.T) {
	put := model.LegConfig{
		Direction: model.DirectionSell, OptionType: model.OptionPut,
		Quantity: 1, StrikeMethod: model.StrikeByPercentOTM, StrikeValue: 5, DTE: 30,
	}
	assert.Equal(t, 95.0, ResolveStrike(put, 100, 30, 0.25))

	call := put
	call.OptionType = model.OptionCall
	assert.Equal(t, 105.0, ResolveStrike(call, 100, 30, 0.25))

	offset := model.LegConfig{
		Direction: model.DirectionSell, OptionType: model.OptionPut,
		Quantity: 1, StrikeMethod: model.StrikeByPriceOffset, StrikeValue: 10, DTE: 30,
	}
	assert.Equal(t, 90.0, ResolveStrike(offset, 100, 30, 0.25))

	// premium selection falls back to delta 30
	premium := model.LegConfig{
		Direction: model.DirectionSell, OptionType: model.OptionPut,
		Quantity: 1, StrikeMethod: model.StrikeByPremium, DTE: 30,
	}
	byDelta := model.LegConfig{
		Direction: model.DirectionSell, OptionType: model.OptionPut,
		Quantity: 1, StrikeMethod: model.StrikeByDelta, StrikeValue: 0.30, DTE: 30,
	}
	assert.Equal(t, ResolveStrike(byDelta, 100, 30, 0.25), ResolveStrike(premium, 100, 30, 0.25))
}

func TestSnapStrikeTiers(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{23.4, 23.5}, // 0.5 increment below 25
		{23.1, 23.0},
		{37.3, 37.0},  // 1.0 increment below 50
		{37.6, 38.0},  // nearest, no OTM bias
		{101.3, 102.5}, // 2.5 increment below 200
		{98.7, 97.5},
		{333.0, 335.0}, // 5.0 increment at 200+
		{331.9, 330.0},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, SnapStrike(tt.raw), "raw strike %v", tt.raw)
	}
}
