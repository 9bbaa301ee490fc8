package model

import (
	"time"
)

// PriceBar represents one daily OHLCV bar for a symbol. Bars are immutable
// once cached; the repository only ever inserts, keyed by (symbol, bar_date).
type PriceBar struct {
	Symbol string    `json:"symbol" db:"symbol"`
	Date   time.Time `json:"date" db:"bar_date"`
	Open   float64   `json:"open" db:"open"`
	High   float64   `json:"high" db:"high"`
	Low    float64   `json:"low" db:"low"`
	Close  float64   `json:"close" db:"close"`
	Volume float64   `json:"volume" db:"volume"`
}

// BarQuery represents a query for daily bars
type BarQuery struct {
	Symbol    string     `json:"symbol" form:"symbol" binding:"required"`
	StartDate *time.Time `json:"start_date" form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `json:"end_date" form:"end_date" time_format:"2006-01-02"`
}

// DateRange represents a range of dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
