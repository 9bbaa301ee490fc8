package model

import (
	"time"
)

// CloseReason is the single terminal reason attached to a closed trade
type CloseReason string

const (
	CloseExpired       CloseReason = "expired"
	CloseExercised     CloseReason = "exercised"
	CloseExitAtDTE     CloseReason = "exitAtDTE"
	CloseExitAfterDays CloseReason = "exitAfterDays"
	CloseTakeProfit    CloseReason = "takeProfit"
	CloseStopLoss      CloseReason = "stopLoss"
	CloseEndOfBacktest CloseReason = "endOfBacktest"
)

// TradeLeg is one resolved leg of an open or closed trade. The strike is
// fixed at entry and never changes afterwards.
type TradeLeg struct {
	Config         LegConfig `json:"config"`
	ResolvedStrike float64   `json:"resolved_strike"`
	EntryPrice     float64   `json:"entry_price"`
	DTEAtEntry     int       `json:"dte_at_entry"`
}

// ActiveTrade is a trade in the OPEN state
type ActiveTrade struct {
	TradeNumber          int        `json:"trade_number"`
	OpenedDate           time.Time  `json:"opened_date"`
	ExpirationDate       time.Time  `json:"expiration_date"`
	Legs                 []TradeLeg `json:"legs"`
	NetPremium           float64    `json:"net_premium"` // signed, credit positive
	BuyingPower          float64    `json:"buying_power"`
	DaysInTrade          int        `json:"days_in_trade"`
	UnderlyingPriceAtOpen float64    `json:"underlying_price_at_open"`
}

// ClosedTrade is a terminal trade record
type ClosedTrade struct {
	ActiveTrade
	ClosedDate             time.Time   `json:"closed_date"`
	PerLegExitPrice        []float64   `json:"per_leg_exit_price"`
	Fees                   float64     `json:"fees"`
	ProfitLoss             float64     `json:"profit_loss"`
	CloseReason            CloseReason `json:"close_reason"`
	ROI                    float64     `json:"roi"`
	UnderlyingPriceAtClose float64     `json:"underlying_price_at_close"`
}

// DailyLog is one end-of-day snapshot of the simulation
type DailyLog struct {
	Date             time.Time `json:"date"`
	UnderlyingPrice  float64   `json:"underlying_price"`
	TotalProfitLoss  float64   `json:"total_profit_loss"` // realized + unrealized
	NetLiquidity     float64   `json:"net_liquidity"`
	DrawdownPercent  float64   `json:"drawdown_percent"`
	ROI              float64   `json:"roi"`
	ActiveTradeCount int       `json:"active_trade_count"`
}
