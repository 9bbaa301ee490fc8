package engine

import (
	"math"
	"time"

	"github.com/yourorg/options-backtester/internal/model"
)

// Summarize computes portfolio-level metrics over the closed trades. Every
// division is guarded; with no capital used or no elapsed time the dependent
// ratios stay zero.
func Summarize(trades []model.ClosedTrade, usedCapital, maxDrawdown float64, maxDrawdownDate *time.Time, start, end time.Time) model.SummaryMetrics {
	var totalPL float64
	for _, t := range trades {
		totalPL += t.ProfitLoss
	}

	summary := model.SummaryMetrics{
		TotalProfitLoss: totalPL,
		MaxDrawdown:     maxDrawdown,
		MaxDrawdownDate: maxDrawdownDate,
		UsedCapital:     usedCapital,
	}

	if usedCapital > 0 {
		summary.ReturnOnCapital = totalPL / usedCapital * 100

		years := end.Sub(start).Hours() / 24 / 365.25
		endValue := usedCapital + totalPL
		if years > 0 && endValue > 0 {
			summary.CAGR = (math.Pow(endValue/usedCapital, 1/years) - 1) * 100
		}
	}

	if maxDrawdown > 0 {
		summary.MARRatio = summary.CAGR / maxDrawdown
	}

	return summary
}

// Detail computes per-trade statistics. Zero trades yields the zero struct,
// never NaN or Inf.
func Detail(trades []model.ClosedTrade) model.DetailMetrics {
	var d model.DetailMetrics
	d.TradeCount = len(trades)
	if d.TradeCount == 0 {
		return d
	}

	var sumROI, sumDays, sumBP, sumPremium, sumWins, sumLosses float64
	for _, t := range trades {
		if t.ProfitLoss > 0 {
			d.WinningTrades++
			sumWins += t.ProfitLoss
			if t.ProfitLoss > d.LargestWin {
				d.LargestWin = t.ProfitLoss
			}
		} else if t.ProfitLoss < 0 {
			d.LosingTrades++
			sumLosses += t.ProfitLoss
			if t.ProfitLoss < d.LargestLoss {
				d.LargestLoss = t.ProfitLoss
			}
		}

		sumROI += t.ROI
		sumDays += float64(t.DaysInTrade)
		sumBP += t.BuyingPower
		sumPremium += t.NetPremium
		d.TotalFees += t.Fees
	}

	n := float64(d.TradeCount)
	d.ProfitRate = float64(d.WinningTrades) / n * 100
	d.LossRate = float64(d.LosingTrades) / n * 100
	d.AvgROI = sumROI / n
	d.AvgDaysInTrade = sumDays / n
	d.AvgBuyingPower = sumBP / n
	d.AvgPremium = sumPremium / n
	d.TotalPremium = sumPremium

	if d.WinningTrades > 0 {
		d.AvgWinSize = sumWins / float64(d.WinningTrades)
	}
	if d.LosingTrades > 0 {
		d.AvgLossSize = sumLosses / float64(d.LosingTrades)
	}

	return d
}
