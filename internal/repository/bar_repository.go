package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourorg/options-backtester/internal/model"
)

// BarRepository handles database operations for the daily bar cache. Bars
// are only ever inserted; the cache is append-only per (symbol, date).
type BarRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewBarRepository creates a new bar repository
func NewBarRepository(db *sqlx.DB, logger *zap.Logger) *BarRepository {
	return &BarRepository{
		db:     db,
		logger: logger,
	}
}

// GetBars retrieves cached bars for a symbol in ascending date order
func (r *BarRepository) GetBars(
	ctx context.Context,
	symbol string,
	start time.Time,
	end time.Time,
) ([]model.PriceBar, error) {
	query := `
		SELECT symbol, bar_date, open, high, low, close, volume
		FROM price_bars
		WHERE symbol = $1 AND bar_date >= $2 AND bar_date <= $3
		ORDER BY bar_date
	`

	var bars []model.PriceBar
	err := r.db.SelectContext(ctx, &bars, query, symbol, start, end)
	if err != nil {
		r.logger.Error("Failed to get bars",
			zap.Error(err),
			zap.String("symbol", symbol))
		return nil, err
	}

	return bars, nil
}

// GetBarsForDates retrieves cached bars for an explicit set of dates
func (r *BarRepository) GetBarsForDates(
	ctx context.Context,
	symbol string,
	dates []time.Time,
) ([]model.PriceBar, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	query := `
		SELECT symbol, bar_date, open, high, low, close, volume
		FROM price_bars
		WHERE symbol = $1 AND bar_date = ANY($2)
		ORDER BY bar_date
	`

	var bars []model.PriceBar
	err := r.db.SelectContext(ctx, &bars, query, symbol, pq.Array(dates))
	if err != nil {
		r.logger.Error("Failed to get bars for date set",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.Int("dates", len(dates)))
		return nil, err
	}

	return bars, nil
}

// InsertBars inserts a batch of bars. Concurrent runs can race on the same
// (symbol, date) pairs, so the insert ignores conflicts rather than
// updating: cached bars are immutable.
func (r *BarRepository) InsertBars(ctx context.Context, bars []model.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO price_bars (symbol, bar_date, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, bar_date) DO NOTHING
	`)
	if err != nil {
		r.logger.Error("Failed to prepare statement", zap.Error(err))
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, bar := range bars {
		_, err = stmt.ExecContext(
			ctx,
			bar.Symbol,
			bar.Date,
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
			now,
		)
		if err != nil {
			r.logger.Error("Failed to insert bar",
				zap.Error(err),
				zap.String("symbol", bar.Symbol),
				zap.Time("date", bar.Date))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return err
	}

	return nil
}

// HasData checks whether any bars are cached for a symbol
func (r *BarRepository) HasData(ctx context.Context, symbol string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM price_bars
			WHERE symbol = $1
			LIMIT 1
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, symbol)
	if err != nil {
		r.logger.Error("Failed to check cached data",
			zap.Error(err),
			zap.String("symbol", symbol))
		return false, err
	}

	return exists, nil
}

// GetDataRange returns the date range of cached bars for a symbol
func (r *BarRepository) GetDataRange(
	ctx context.Context,
	symbol string,
) (startDate, endDate time.Time, err error) {
	query := `
		SELECT
			MIN(bar_date) as start_date,
			MAX(bar_date) as end_date
		FROM price_bars
		WHERE symbol = $1
	`

	var result struct {
		StartDate time.Time `db:"start_date"`
		EndDate   time.Time `db:"end_date"`
	}

	err = r.db.GetContext(ctx, &result, query, symbol)
	if err != nil {
		r.logger.Error("Failed to get data range",
			zap.Error(err),
			zap.String("symbol", symbol))
		return time.Time{}, time.Time{}, err
	}

	return result.StartDate, result.EndDate, nil
}
