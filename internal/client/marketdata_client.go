package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/yourorg/options-backtester/internal/model"
)

const defaultFetchTimeout = 30 * time.Second

// MarketDataClient fetches daily OHLCV bars from the upstream data source
type MarketDataClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewMarketDataClient creates a new upstream market data client
func NewMarketDataClient(baseURL, apiKey string, logger *zap.Logger) *MarketDataClient {
	return &MarketDataClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultFetchTimeout,
		},
		logger: logger,
	}
}

// barRow is the upstream wire format for one daily bar
type barRow struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// FetchBars retrieves daily bars for a symbol in [start, end], ascending.
// Transient failures are retried with exponential backoff bounded by the
// request context.
func (c *MarketDataClient) FetchBars(
	ctx context.Context,
	symbol string,
	start time.Time,
	end time.Time,
) ([]model.PriceBar, error) {
	reqURL := fmt.Sprintf("%s/daily", c.baseURL)

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("start", start.Format("2006-01-02"))
	params.Add("end", end.Format("2006-01-02"))
	if c.apiKey != "" {
		params.Add("apikey", c.apiKey)
	}
	reqURL = reqURL + "?" + params.Encode()

	var rows []barRow
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("Upstream bar fetch failed, will retry",
				zap.Error(err),
				zap.String("symbol", symbol))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			err := fmt.Errorf("upstream returned status code %d: %s", resp.StatusCode, string(bodyBytes))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			c.logger.Warn("Upstream error response, will retry",
				zap.Int("statusCode", resp.StatusCode),
				zap.String("symbol", symbol))
			return err
		}

		if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode bars: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.NewExponentialBackOff(), ctx)); err != nil {
		return nil, fmt.Errorf("failed to fetch bars for %s: %w", symbol, err)
	}

	if len(rows) == 0 {
		c.logger.Warn("Upstream returned no bars",
			zap.String("symbol", symbol),
			zap.Time("start", start),
			zap.Time("end", end))
	}

	bars := make([]model.PriceBar, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			c.logger.Warn("Skipping malformed bar row",
				zap.Int("index", i),
				zap.String("date", row.Date))
			continue
		}

		bars = append(bars, model.PriceBar{
			Symbol: symbol,
			Date:   date,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	return bars, nil
}
