// Package marketdata fetches historical daily price bars from a public
// market-data HTTP API.
package marketdata

import (
	"context"
	"errors"
	"time"

	"mention-market-lab/internal/domain"
)

// ErrNoMarketData is returned when the provider has no price series for a
// symbol (unknown ticker, delisted, or empty range). Callers should render
// an empty state, not fail.
var ErrNoMarketData = errors.New("no market data available")

// Provider fetches daily OHLCV bars for a symbol.
type Provider interface {
	// DailyBars returns one bar per trading day within [start, end],
	// ascending date order, no duplicate dates. Returns ErrNoMarketData
	// when the symbol has no price series.
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.PriceBar, error)
}
