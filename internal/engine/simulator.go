package engine

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/options-backtester/internal/model"
)

// ErrNoBars is returned when a simulation is started without price history
var ErrNoBars = errors.New("no price bars available for simulation")

// ProgressFunc receives the percentage of simulated days processed so far
type ProgressFunc func(percent int)

// progressInterval controls how often the progress sink is notified
const progressInterval = 5

// Simulator walks trading days one at a time, opening and closing trades
// according to the configured entry and exit rules. A trade is either open
// (member of the active set) or closed (appended to history); there are no
// other states and closed trades never reopen.
type Simulator struct {
	cfg      *model.BacktestConfig
	bars     []model.PriceBar
	logger   *zap.Logger
	progress ProgressFunc

	active    []*model.ActiveTrade
	closed    []model.ClosedTrade
	dailyLogs []model.DailyLog

	realizedPL      float64
	peakPL          float64
	maxDrawdown     float64
	maxDrawdownDate time.Time
	peakCommitted   float64
	nextTradeNumber int
}

// NewSimulator creates a simulator over a pre-fetched ascending bar series.
// The progress function may be nil.
func NewSimulator(cfg *model.BacktestConfig, bars []model.PriceBar, logger *zap.Logger, progress ProgressFunc) *Simulator {
	return &Simulator{
		cfg:             cfg,
		bars:            bars,
		logger:          logger,
		progress:        progress,
		nextTradeNumber: 1,
	}
}

// Run executes the full simulation and aggregates the result. It checks for
// cancellation between simulated days.
func (s *Simulator) Run(ctx context.Context) (*model.BacktestRunResult, error) {
	if len(s.bars) == 0 {
		return nil, ErrNoBars
	}

	total := len(s.bars)
	for i, bar := range s.bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vol := EstimateVolatility(s.bars[:i+1], DefaultVolLookback)
		s.stepDay(bar, vol)

		if s.progress != nil && ((i+1)%progressInterval == 0 || i == total-1) {
			s.progress((i + 1) * 100 / total)
		}
	}

	// Anything still open is force-closed at the final bar
	finalBar := s.bars[total-1]
	finalVol := EstimateVolatility(s.bars, DefaultVolLookback)
	for _, t := range s.active {
		s.closeTrade(t, finalBar, finalVol, model.CloseEndOfBacktest)
	}
	s.active = nil

	s.logger.Debug("Simulation finished",
		zap.String("symbol", s.cfg.Symbol),
		zap.Int("trades", len(s.closed)),
		zap.Int("days", len(s.dailyLogs)))

	return s.buildResult(), nil
}

// stepDay processes one trading day in the fixed order: age open trades,
// evaluate exits, close, evaluate entries, mark to model, snapshot.
func (s *Simulator) stepDay(bar model.PriceBar, vol float64) {
	day := DateOnly(bar.Date)
	spot := bar.Close

	for _, t := range s.active {
		t.DaysInTrade++
	}

	var remaining []*model.ActiveTrade
	for _, t := range s.active {
		reason, hit := s.exitReason(t, day, spot, vol)
		if hit {
			s.closeTrade(t, bar, vol, reason)
			continue
		}
		remaining = append(remaining, t)
	}
	s.active = remaining

	if s.entryEligible(day) {
		if t := s.openTrade(bar, vol); t != nil {
			s.active = append(s.active, t)
		}
	}

	committed := 0.0
	unrealized := 0.0
	for _, t := range s.active {
		committed += t.BuyingPower
		unrealized += t.NetPremium - s.markValue(t, day, spot, vol)
	}
	if committed > s.peakCommitted {
		s.peakCommitted = committed
	}

	totalPL := s.realizedPL + unrealized
	if totalPL > s.peakPL {
		s.peakPL = totalPL
	}

	drawdown := 0.0
	if committed > 0 {
		// drawdown is measured against capital currently committed,
		// not against starting capital
		drawdown = (s.peakPL - totalPL) / committed * 100
	}
	if drawdown > s.maxDrawdown {
		s.maxDrawdown = drawdown
		s.maxDrawdownDate = day
	}

	base := s.capitalBase()
	roi := 0.0
	if base > 0 {
		roi = totalPL / base * 100
	}

	s.dailyLogs = append(s.dailyLogs, model.DailyLog{
		Date:             day,
		UnderlyingPrice:  spot,
		TotalProfitLoss:  totalPL,
		NetLiquidity:     base + totalPL,
		DrawdownPercent:  drawdown,
		ROI:              roi,
		ActiveTradeCount: len(s.active),
	})
}

// exitReason evaluates the exit rules in fixed precedence; the first rule
// that matches wins, so a take-profit and stop-loss crossed on the same day
// resolve to take-profit.
func (s *Simulator) exitReason(t *model.ActiveTrade, day time.Time, spot, vol float64) (model.CloseReason, bool) {
	exits := s.cfg.ExitConditions
	dte := CalendarDays(day, t.ExpirationDate)

	if dte <= 0 {
		return model.CloseExpired, true
	}
	if exits.ExitAtDTE > 0 && dte <= exits.ExitAtDTE {
		return model.CloseExitAtDTE, true
	}
	if exits.ExitAfterDays > 0 && t.DaysInTrade >= exits.ExitAfterDays {
		return model.CloseExitAfterDays, true
	}

	if exits.TakeProfitPercent > 0 || exits.StopLossPercent > 0 {
		base := math.Abs(t.NetPremium)
		if base > 0 {
			pl := t.NetPremium - s.markValue(t, day, spot, vol)
			plPercent := pl / base * 100
			if exits.TakeProfitPercent > 0 && plPercent >= exits.TakeProfitPercent {
				return model.CloseTakeProfit, true
			}
			if exits.StopLossPercent > 0 && plPercent <= -exits.StopLossPercent {
				return model.CloseStopLoss, true
			}
		}
	}

	return "", false
}

// closeTrade prices every leg at the day's close and appends the terminal
// record. Legs with time remaining use model value; legs at or past
// expiration settle to intrinsic value. An expired close with positive
// intrinsic value is an assignment, reported as exercised.
func (s *Simulator) closeTrade(t *model.ActiveTrade, bar model.PriceBar, vol float64, reason model.CloseReason) {
	day := DateOnly(bar.Date)
	spot := bar.Close

	exitPrices := make([]float64, len(t.Legs))
	anyIntrinsic := false
	for i, leg := range t.Legs {
		dte := float64(leg.DTEAtEntry - CalendarDays(t.OpenedDate, day))
		if dte > 0 {
			exitPrices[i] = OptionPrice(leg.Config.OptionType, spot, leg.ResolvedStrike, dte, vol)
		} else {
			exitPrices[i] = IntrinsicValue(leg.Config.OptionType, spot, leg.ResolvedStrike)
		}
		if IntrinsicValue(leg.Config.OptionType, spot, leg.ResolvedStrike) > 0 {
			anyIntrinsic = true
		}
	}

	if reason == model.CloseExpired && anyIntrinsic {
		reason = model.CloseExercised
	}

	exitNet := netValue(t.Legs, exitPrices)
	fees := float64(totalContracts(t.Legs)) * s.cfg.FeePerContract * 2
	pl := t.NetPremium - exitNet - fees

	roi := 0.0
	if t.BuyingPower > 0 {
		roi = pl / t.BuyingPower * 100
	}

	s.realizedPL += pl
	s.closed = append(s.closed, model.ClosedTrade{
		ActiveTrade:            *t,
		ClosedDate:             day,
		PerLegExitPrice:        exitPrices,
		Fees:                   fees,
		ProfitLoss:             pl,
		CloseReason:            reason,
		ROI:                    roi,
		UnderlyingPriceAtClose: spot,
	})
}

// entryEligible applies the trade cap and the configured entry frequency
func (s *Simulator) entryEligible(day time.Time) bool {
	if len(s.active) >= s.cfg.EntryConditions.MaxActiveTrades {
		return false
	}

	switch s.cfg.EntryConditions.Frequency {
	case model.FrequencyWeekdays:
		for _, wd := range s.cfg.EntryConditions.SpecificWeekdays {
			if day.Weekday() == wd {
				return true
			}
		}
		return false
	case model.FrequencyExactDTE:
		dte := s.cfg.MaxDTE()
		return CalendarDays(day, ResolveExpiration(day, dte)) == dte
	default:
		return true
	}
}

// openTrade resolves every configured leg at the day's close and adds the
// trade to the open set. Strikes are fixed here and never change afterwards.
func (s *Simulator) openTrade(bar model.PriceBar, vol float64) *model.ActiveTrade {
	day := DateOnly(bar.Date)
	spot := bar.Close

	legs := make([]model.TradeLeg, 0, len(s.cfg.Legs))
	entryPrices := make([]float64, 0, len(s.cfg.Legs))
	var expiration time.Time

	for _, legCfg := range s.cfg.Legs {
		legExp := ResolveExpiration(day, legCfg.DTE)
		dte := CalendarDays(day, legExp)
		if dte <= 0 {
			s.logger.Debug("Skipping entry, resolved expiration not in the future",
				zap.Time("day", day),
				zap.Int("dte", legCfg.DTE))
			return nil
		}

		strike := ResolveStrike(legCfg, spot, float64(dte), vol)
		price := OptionPrice(legCfg.OptionType, spot, strike, float64(dte), vol)

		legs = append(legs, model.TradeLeg{
			Config:         legCfg,
			ResolvedStrike: strike,
			EntryPrice:     price,
			DTEAtEntry:     dte,
		})
		entryPrices = append(entryPrices, price)

		// the trade is forced closed at its earliest leg expiration
		if expiration.IsZero() || legExp.Before(expiration) {
			expiration = legExp
		}
	}

	trade := &model.ActiveTrade{
		TradeNumber:           s.nextTradeNumber,
		OpenedDate:            day,
		ExpirationDate:        expiration,
		Legs:                  legs,
		NetPremium:            netValue(legs, entryPrices),
		BuyingPower:           BuyingPower(legs, spot),
		UnderlyingPriceAtOpen: spot,
	}
	s.nextTradeNumber++
	return trade
}

// markValue reprices a trade's legs at the day's close and remaining DTE
func (s *Simulator) markValue(t *model.ActiveTrade, day time.Time, spot, vol float64) float64 {
	prices := make([]float64, len(t.Legs))
	elapsed := CalendarDays(t.OpenedDate, day)
	for i, leg := range t.Legs {
		dte := float64(leg.DTEAtEntry - elapsed)
		prices[i] = OptionPrice(leg.Config.OptionType, spot, leg.ResolvedStrike, dte, vol)
	}
	return netValue(t.Legs, prices)
}

// capitalBase is the denominator for return metrics: manual capital when
// configured, otherwise the running peak of concurrently committed buying
// power.
func (s *Simulator) capitalBase() float64 {
	if s.cfg.CapitalMethod == model.CapitalManual && s.cfg.ManualCapital > 0 {
		return s.cfg.ManualCapital
	}
	return s.peakCommitted
}

func (s *Simulator) buildResult() *model.BacktestRunResult {
	usedCapital := s.capitalBase()

	start := DateOnly(s.bars[0].Date)
	end := DateOnly(s.bars[len(s.bars)-1].Date)

	var ddDate *time.Time
	if !s.maxDrawdownDate.IsZero() {
		d := s.maxDrawdownDate
		ddDate = &d
	}

	pnl := make([]model.PnLPoint, len(s.dailyLogs))
	for i, log := range s.dailyLogs {
		pnl[i] = model.PnLPoint{Date: log.Date, ProfitLoss: log.TotalProfitLoss}
	}

	return &model.BacktestRunResult{
		Summary:      Summarize(s.closed, usedCapital, s.maxDrawdown, ddDate, start, end),
		Details:      Detail(s.closed),
		Trades:       s.closed,
		DailyLogs:    s.dailyLogs,
		PriceHistory: s.bars,
		PnLHistory:   pnl,
	}
}

// netValue sums signed leg values with credits positive: sold legs add,
// bought legs subtract.
func netValue(legs []model.TradeLeg, prices []float64) float64 {
	var net float64
	for i, leg := range legs {
		v := prices[i] * float64(leg.Config.Quantity) * contractMultiplier
		if leg.Config.Direction == model.DirectionSell {
			net += v
		} else {
			net -= v
		}
	}
	return net
}

func totalContracts(legs []model.TradeLeg) int {
	var n int
	for _, leg := range legs {
		n += leg.Config.Quantity
	}
	return n
}
