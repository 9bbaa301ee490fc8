package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/options-backtester/internal/model"
)

func closedTrade(pl, roi, bp float64, days int) model.ClosedTrade {
	return model.ClosedTrade{
		ActiveTrade: model.ActiveTrade{
			NetPremium:  pl,
			BuyingPower: bp,
			DaysInTrade: days,
		},
		ProfitLoss: pl,
		ROI:        roi,
	}
}

func TestDetailZeroTradesYieldsZeroStruct(t *testing.T) {
	d := Detail(nil)
	assert.Equal(t, model.DetailMetrics{}, d)
}

func TestDetailAllWinningTrades(t *testing.T) {
	trades := []model.ClosedTrade{
		closedTrade(100, 10, 1000, 5),
		closedTrade(250, 25, 1000, 8),
		closedTrade(50, 5, 1000, 3),
	}

	d := Detail(trades)
	assert.Equal(t, 3, d.TradeCount)
	assert.Equal(t, 3, d.WinningTrades)
	assert.Equal(t, 0, d.LosingTrades)
	assert.Equal(t, 100.0, d.ProfitRate)
	assert.Equal(t, 0.0, d.LossRate)
	assert.Equal(t, 0.0, d.AvgLossSize)
	assert.Equal(t, 250.0, d.LargestWin)
	assert.Equal(t, 0.0, d.LargestLoss)
	assert.InDelta(t, 400.0/3, d.AvgWinSize, 1e-9)
}

func TestDetailMixedTrades(t *testing.T) {
	trades := []model.ClosedTrade{
		closedTrade(200, 20, 1000, 10),
		closedTrade(-100, -10, 1000, 4),
		closedTrade(300, 30, 2000, 6),
		closedTrade(-50, -5, 500, 2),
	}

	d := Detail(trades)
	assert.Equal(t, 4, d.TradeCount)
	assert.Equal(t, 2, d.WinningTrades)
	assert.Equal(t, 2, d.LosingTrades)
	assert.Equal(t, 50.0, d.ProfitRate)
	assert.Equal(t, 50.0, d.LossRate)
	assert.Equal(t, 300.0, d.LargestWin)
	assert.Equal(t, -100.0, d.LargestLoss)
	assert.Equal(t, 250.0, d.AvgWinSize)
	assert.Equal(t, -75.0, d.AvgLossSize)
	assert.Equal(t, 5.5, d.AvgDaysInTrade)
	assert.Equal(t, 1125.0, d.AvgBuyingPower)
}

func TestSummarizeZeroCapitalStaysZero(t *testing.T) {
	s := Summarize(nil, 0, 0, nil, date(2024, time.January, 2), date(2024, time.December, 31))
	assert.Equal(t, 0.0, s.ReturnOnCapital)
	assert.Equal(t, 0.0, s.CAGR)
	assert.Equal(t, 0.0, s.MARRatio)
}

func TestSummarizeReturnAndCAGR(t *testing.T) {
	trades := []model.ClosedTrade{closedTrade(1000, 10, 10000, 5)}
	start := date(2023, time.January, 2)
	end := date(2024, time.January, 2)

	s := Summarize(trades, 10000, 5, nil, start, end)
	assert.Equal(t, 1000.0, s.TotalProfitLoss)
	assert.Equal(t, 10.0, s.ReturnOnCapital)
	// one year: CAGR approximately equals the simple return
	assert.InDelta(t, 10.0, s.CAGR, 0.2)
	assert.InDelta(t, s.CAGR/5, s.MARRatio, 1e-9)
}

func TestSummarizeDrawdownDatePassedThrough(t *testing.T) {
	dd := date(2024, time.June, 14)
	s := Summarize(nil, 1000, 12.5, &dd, date(2024, time.January, 2), date(2024, time.December, 31))
	assert.Equal(t, 12.5, s.MaxDrawdown)
	assert.Equal(t, &dd, s.MaxDrawdownDate)
}
