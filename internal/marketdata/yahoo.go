package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"mention-market-lab/internal/domain"
)

// Default configuration values.
const (
	DefaultBaseURL    = "https://query1.finance.yahoo.com"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 1 * time.Second
)

// YahooClient implements Provider using the Yahoo Finance chart API.
type YahooClient struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// ClientOption configures YahooClient.
type ClientOption func(*YahooClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *YahooClient) {
		c.baseURL = u
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *YahooClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum transport-level retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *YahooClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the delay between retry attempts.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *YahooClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *YahooClient) {
		c.client = client
	}
}

// NewYahooClient creates a new Yahoo Finance chart API client.
func NewYahooClient(opts ...ClientOption) *YahooClient {
	c := &YahooClient{
		baseURL:    DefaultBaseURL,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Provider = (*YahooClient)(nil)

// chartResponse is the response structure of the chart API.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyBars returns one bar per trading day within [start, end]. The symbol
// is translated to provider format (crypto quote suffix) before the request.
func (c *YahooClient) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.PriceBar, error) {
	providerSym := ProviderSymbol(symbol)

	// period2 is exclusive upstream, extend by one day to keep [start, end]
	// inclusive.
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		url.PathEscape(providerSym),
		start.UTC().Unix(),
		end.UTC().Add(24*time.Hour).Unix(),
	)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}
	if chart.Chart.Error != nil {
		// The API answers with a "Not Found" error object for unknown
		// symbols; that is the empty-state case, not a failure.
		return nil, fmt.Errorf("%w: %s", ErrNoMarketData, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, ErrNoMarketData
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, ErrNoMarketData
	}
	quote := result.Indicators.Quote[0]

	// Collapse intraday timestamps to calendar days; the last observation
	// for a day wins (the API occasionally repeats the current day).
	byDay := make(map[time.Time]domain.PriceBar)
	for i, ts := range result.Timestamp {
		o := deref(quote.Open, i)
		h := deref(quote.High, i)
		l := deref(quote.Low, i)
		cl := deref(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // null bars on holidays
		}
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		byDay[day] = domain.PriceBar{
			Symbol: providerSym,
			Date:   day,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: deref(quote.Volume, i),
		}
	}

	bars := make([]domain.PriceBar, 0, len(byDay))
	endDay := end.UTC().Truncate(24 * time.Hour)
	startDay := start.UTC().Truncate(24 * time.Hour)
	for day, bar := range byDay {
		if day.Before(startDay) || day.After(endDay) {
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, ErrNoMarketData
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// get performs a GET with bounded transport-level retries.
func (c *YahooClient) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("market data fetch: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response body: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			// Unknown symbols come back 404 with an error body worth
			// decoding; let the caller classify it.
			return body, nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("market data api: status %d", resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("market data api: status %d, body: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}

// deref returns the i-th value of a nullable series, 0 for nulls or
// out-of-range indexes.
func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
