package model

import (
	"time"
)

// Direction indicates whether a leg is bought or sold
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// OptionType is the contract type of a leg
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// StrikeMethod selects how a leg's strike is resolved at entry
type StrikeMethod string

const (
	StrikeByDelta       StrikeMethod = "delta"
	StrikeByPercentOTM  StrikeMethod = "percentOTM"
	StrikeByPriceOffset StrikeMethod = "priceOffset"
	StrikeByPremium     StrikeMethod = "premium"
)

// EntryFrequency controls which days are eligible for opening a new trade
type EntryFrequency string

const (
	FrequencyDaily    EntryFrequency = "daily"
	FrequencyWeekdays EntryFrequency = "weekdays"
	FrequencyExactDTE EntryFrequency = "exactDTE"
)

// CapitalMethod controls how the capital base for return metrics is chosen
type CapitalMethod string

const (
	CapitalAuto   CapitalMethod = "auto"
	CapitalManual CapitalMethod = "manual"
)

// LegConfig is the template for one leg of a multi-leg strategy. Strikes are
// resolved from the template once, at trade entry.
type LegConfig struct {
	Direction    Direction    `json:"direction" binding:"required,oneof=buy sell"`
	OptionType   OptionType   `json:"option_type" binding:"required,oneof=call put"`
	Quantity     int          `json:"quantity" binding:"required,min=1"`
	StrikeMethod StrikeMethod `json:"strike_method" binding:"required,oneof=delta percentOTM priceOffset premium"`
	StrikeValue  float64      `json:"strike_value"`
	DTE          int          `json:"dte" binding:"required,min=1"`
}

// EntryConditions gates when new trades may be opened
type EntryConditions struct {
	Frequency        EntryFrequency `json:"frequency" binding:"required,oneof=daily weekdays exactDTE"`
	MaxActiveTrades  int            `json:"max_active_trades" binding:"required,min=1"`
	SpecificWeekdays []time.Weekday `json:"specific_weekdays,omitempty"`
}

// ExitConditions controls when open trades are closed. Zero values disable
// the corresponding rule; expiration always applies.
type ExitConditions struct {
	ExitAtDTE         int     `json:"exit_at_dte,omitempty"`
	ExitAfterDays     int     `json:"exit_after_days,omitempty"`
	StopLossPercent   float64 `json:"stop_loss_percent,omitempty"`
	TakeProfitPercent float64 `json:"take_profit_percent,omitempty"`
}

// BacktestConfig is the fully-populated input for one backtest run
type BacktestConfig struct {
	Symbol          string          `json:"symbol" binding:"required"`
	StartDate       time.Time       `json:"start_date" binding:"required" time_format:"2006-01-02"`
	EndDate         time.Time       `json:"end_date" binding:"required" time_format:"2006-01-02"`
	Legs            []LegConfig     `json:"legs" binding:"required,min=1,dive"`
	EntryConditions EntryConditions `json:"entry_conditions" binding:"required"`
	ExitConditions  ExitConditions  `json:"exit_conditions"`
	CapitalMethod   CapitalMethod   `json:"capital_method" binding:"required,oneof=auto manual"`
	ManualCapital   float64         `json:"manual_capital,omitempty"`
	FeePerContract  float64         `json:"fee_per_contract,omitempty"`
}

// MaxDTE returns the longest DTE across the configured legs
func (c *BacktestConfig) MaxDTE() int {
	max := 0
	for _, leg := range c.Legs {
		if leg.DTE > max {
			max = leg.DTE
		}
	}
	return max
}
