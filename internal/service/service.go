// Package service orchestrates one symbol's chart request: fetch mentions
// and price bars, merge them on the calendar, derive statistics.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"mention-market-lab/internal/domain"
	"mention-market-lab/internal/marketdata"
	"mention-market-lab/internal/merge"
	"mention-market-lab/internal/observability"
	"mention-market-lab/internal/storage"
)

// Default lookback when the caller does not specify one.
const DefaultLookbackDays = 90

// SymbolSeries is the result of one merged-series request.
type SymbolSeries struct {
	Symbol string
	Rows   []domain.MergedRow
	Stats  merge.SeriesStats
}

// ChartService joins mention events with daily price bars.
type ChartService struct {
	mentions storage.MentionStore
	provider marketdata.Provider
	cache    storage.PriceBarStore // optional write-through cache
	logger   *log.Logger
	now      func() time.Time
}

// Option configures ChartService.
type Option func(*ChartService)

// WithCache enables write-through caching of fetched price bars.
func WithCache(cache storage.PriceBarStore) Option {
	return func(s *ChartService) {
		s.cache = cache
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *ChartService) {
		s.logger = logger
	}
}

// WithClock sets a custom clock function for deterministic output.
func WithClock(now func() time.Time) Option {
	return func(s *ChartService) {
		s.now = now
	}
}

// New creates a ChartService.
func New(mentions storage.MentionStore, provider marketdata.Provider, opts ...Option) *ChartService {
	s := &ChartService{
		mentions: mentions,
		provider: provider,
		logger:   log.New(io.Discard, "", 0),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MergedSeries fetches mentions and price bars for a symbol over the last
// days calendar days and merges them. The two fetches are independent and
// run concurrently; the merge waits for both.
//
// Error classes: marketdata.ErrNoMarketData means the symbol has no price
// series (render an empty state); storage.ErrUnavailable means the mention
// store is down or misconfigured. A symbol with no mentions is a normal
// result with MentionCount 0 everywhere.
func (s *ChartService) MergedSeries(ctx context.Context, symbol string, days int) (*SymbolSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}
	if days <= 0 {
		days = DefaultLookbackDays
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)

	var (
		wg      sync.WaitGroup
		events  []domain.MentionEvent
		bars    []domain.PriceBar
		evErr   error
		barsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		events, evErr = s.mentions.GetBySymbol(ctx, symbol, start, end)
	}()
	go func() {
		defer wg.Done()
		fetchStart := time.Now()
		bars, barsErr = s.provider.DailyBars(ctx, symbol, start, end)
		status := "success"
		if barsErr != nil {
			status = "error"
		}
		observability.RecordProviderFetch(status, time.Since(fetchStart).Seconds(), len(bars))
	}()
	wg.Wait()

	if barsErr != nil {
		if errors.Is(barsErr, marketdata.ErrNoMarketData) {
			s.logger.Printf("no market data for %s: %v", symbol, barsErr)
		}
		return nil, fmt.Errorf("fetch price bars for %s: %w", symbol, barsErr)
	}
	if evErr != nil {
		return nil, fmt.Errorf("fetch mentions for %s: %w", symbol, evErr)
	}

	s.cacheBars(ctx, symbol, bars)

	rows, err := merge.Merge(bars, events)
	if err != nil {
		return nil, fmt.Errorf("merge series for %s: %w", symbol, err)
	}

	return &SymbolSeries{
		Symbol: symbol,
		Rows:   rows,
		Stats:  merge.ComputeStats(rows),
	}, nil
}

// Trending returns the most mentioned symbols over the last days calendar
// days.
func (s *ChartService) Trending(ctx context.Context, days, limit int) ([]domain.TrendingSecurity, error) {
	if days <= 0 {
		days = 7
	}
	since := s.now().AddDate(0, 0, -days)

	trending, err := s.mentions.GetTrending(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch trending securities: %w", err)
	}
	return trending, nil
}

// cacheBars writes fetched bars through to the cache, best effort.
// Duplicates are expected on repeated requests and are not an error worth
// surfacing.
func (s *ChartService) cacheBars(ctx context.Context, symbol string, bars []domain.PriceBar) {
	if s.cache == nil || len(bars) == 0 {
		return
	}
	err := s.cache.InsertBulk(ctx, bars)
	if err != nil && errors.Is(err, storage.ErrDuplicateKey) {
		err = nil
	}
	observability.RecordCacheWrite(err)
	if err != nil {
		s.logger.Printf("cache price bars for %s: %v", symbol, err)
	}
}
