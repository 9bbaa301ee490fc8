package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SummaryMetrics are portfolio-level statistics over a completed run
type SummaryMetrics struct {
	TotalProfitLoss float64    `json:"total_profit_loss"`
	MaxDrawdown     float64    `json:"max_drawdown"`
	MaxDrawdownDate *time.Time `json:"max_drawdown_date,omitempty"`
	UsedCapital     float64    `json:"used_capital"`
	ReturnOnCapital float64    `json:"return_on_capital"`
	CAGR            float64    `json:"cagr"`
	MARRatio        float64    `json:"mar_ratio"`
}

// DetailMetrics are per-trade statistics over a completed run
type DetailMetrics struct {
	TradeCount     int     `json:"trade_count"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	ProfitRate     float64 `json:"profit_rate"`
	LossRate       float64 `json:"loss_rate"`
	LargestWin     float64 `json:"largest_win"`
	LargestLoss    float64 `json:"largest_loss"`
	AvgROI         float64 `json:"avg_roi"`
	AvgDaysInTrade float64 `json:"avg_days_in_trade"`
	AvgBuyingPower float64 `json:"avg_buying_power"`
	AvgPremium     float64 `json:"avg_premium"`
	AvgWinSize     float64 `json:"avg_win_size"`
	AvgLossSize    float64 `json:"avg_loss_size"`
	TotalPremium   float64 `json:"total_premium"`
	TotalFees      float64 `json:"total_fees"`
}

// PnLPoint is one point of the cumulative profit/loss series
type PnLPoint struct {
	Date       time.Time `json:"date"`
	ProfitLoss float64   `json:"profit_loss"`
}

// BacktestRunResult is the full output of one run
type BacktestRunResult struct {
	Summary      SummaryMetrics `json:"summary"`
	Details      DetailMetrics  `json:"details"`
	Trades       []ClosedTrade  `json:"trades"`
	DailyLogs    []DailyLog     `json:"daily_logs"`
	PriceHistory []PriceBar     `json:"price_history"`
	PnLHistory   []PnLPoint     `json:"pnl_history"`
}

// Value implements driver.Valuer so results can be stored as JSONB
func (r BacktestRunResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for BacktestRunResult
func (r *BacktestRunResult) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, r)
}

// ValuationPoint is one point of the continuous strategy valuation walk
type ValuationPoint struct {
	Date            time.Time `json:"date"`
	UnderlyingPrice float64   `json:"underlying_price"`
	StrategyValue   float64   `json:"strategy_value"`
}
