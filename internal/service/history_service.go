package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/options-backtester/internal/cache"
	"github.com/yourorg/options-backtester/internal/model"
)

// BarCache is the persistent bar cache surface used by the history service
type BarCache interface {
	GetBarsForDates(ctx context.Context, symbol string, dates []time.Time) ([]model.PriceBar, error)
	InsertBars(ctx context.Context, bars []model.PriceBar) error
}

// BarFetcher is the upstream data source surface
type BarFetcher interface {
	FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error)
}

// HistoryService supplies daily bars cache-first: cached trading dates are
// read from the repository, any missing dates are fetched upstream and
// written back, and recent ranges are memoized in the injected cache.
type HistoryService struct {
	repo     BarCache
	fetcher  BarFetcher
	memCache cache.Cache
	logger   *zap.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(repo BarCache, fetcher BarFetcher, memCache cache.Cache, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		repo:     repo,
		fetcher:  fetcher,
		memCache: memCache,
		logger:   logger,
	}
}

// GetBars returns the ascending daily bars for [start, end], weekends
// skipped. An upstream failure during gap-filling is logged and swallowed;
// the caller gets whatever is cached. An empty result means no data exists
// for the range at all.
func (s *HistoryService) GetBars(
	ctx context.Context,
	symbol string,
	start time.Time,
	end time.Time,
) ([]model.PriceBar, error) {
	key := fmt.Sprintf("%s|%s|%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if s.memCache != nil {
		if v, ok := s.memCache.Get(key); ok {
			return v.([]model.PriceBar), nil
		}
	}

	expected := weekdaysBetween(start, end)
	if len(expected) == 0 {
		return nil, nil
	}

	bars, err := s.repo.GetBarsForDates(ctx, symbol, expected)
	if err != nil {
		return nil, err
	}

	missing := missingDates(expected, bars)
	if len(missing) > 0 {
		fetched, err := s.fetcher.FetchBars(ctx, symbol, missing[0], missing[len(missing)-1])
		if err != nil {
			// proceed on whatever is cached
			s.logger.Warn("Upstream fetch failed, continuing with cached bars",
				zap.Error(err),
				zap.String("symbol", symbol),
				zap.Int("missingDates", len(missing)))
		} else if len(fetched) > 0 {
			if err := s.repo.InsertBars(ctx, fetched); err != nil {
				return nil, err
			}
			bars, err = s.repo.GetBarsForDates(ctx, symbol, expected)
			if err != nil {
				return nil, err
			}
		}
	}

	if s.memCache != nil && len(bars) > 0 {
		s.memCache.Set(key, bars)
	}

	return bars, nil
}

// weekdaysBetween lists the weekday dates in [start, end] at midnight UTC
func weekdaysBetween(start, end time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

// missingDates returns the expected dates with no cached bar
func missingDates(expected []time.Time, bars []model.PriceBar) []time.Time {
	have := make(map[time.Time]bool, len(bars))
	for _, bar := range bars {
		d := bar.Date
		have[time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)] = true
	}

	var missing []time.Time
	for _, d := range expected {
		if !have[d] {
			missing = append(missing, d)
		}
	}
	return missing
}
