package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/options-backtester/internal/model"
)

func TestWalkStrategyValueEmptyInputs(t *testing.T) {
	assert.Nil(t, WalkStrategyValue(nil, []model.LegConfig{{}}))
	assert.Nil(t, WalkStrategyValue(weekdayBars(date(2024, time.January, 2), 5, flat(100)), nil))
}

func TestWalkStrategyValueOnePointPerBar(t *testing.T) {
	bars := weekdayBars(date(2024, time.January, 2), 20, flat(100))
	legs := []model.LegConfig{{
		Direction: model.DirectionSell, OptionType: model.OptionPut,
		Quantity: 1, StrikeMethod: model.StrikeByPercentOTM, StrikeValue: 5, DTE: 30,
	}}

	points := WalkStrategyValue(bars, legs)
	require.Len(t, points, len(bars))
	for i, p := range points {
		assert.Equal(t, DateOnly(bars[i].Date), p.Date)
		assert.Equal(t, bars[i].Close, p.UnderlyingPrice)
	}
}

func TestWalkStrategyValueShortPutDecays(t *testing.T) {
	// flat underlying: a short put position's mark value must not rise as
	// time passes
	bars := weekdayBars(date(2024, time.January, 2), 20, flat(100))
	legs := []model.LegConfig{{
		Direction: model.DirectionSell, OptionType: model.OptionPut,
		Quantity: 1, StrikeMethod: model.StrikeByPercentOTM, StrikeValue: 5, DTE: 30,
	}}

	points := WalkStrategyValue(bars, legs)
	require.NotEmpty(t, points)

	// the mark is the credit-positive value of the sold put, which decays
	// toward zero; skip the first bars where the volatility estimate is
	// still settling
	for i := 4; i < len(points); i++ {
		assert.LessOrEqual(t, points[i].StrategyValue, points[i-1].StrategyValue+1e-9,
			"day %d: short put mark should decay toward zero", i)
	}
}
