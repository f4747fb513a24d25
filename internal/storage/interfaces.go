package storage

import (
	"context"
	"time"

	"mention-market-lab/internal/domain"
)

// MentionStore provides read access to security mention events.
type MentionStore interface {
	// GetBySymbol retrieves all mention events for a symbol whose timestamp
	// falls within [start, end] (inclusive), ordered by timestamp ASC.
	// An empty result is a normal outcome, not an error.
	GetBySymbol(ctx context.Context, symbol string, start, end time.Time) ([]domain.MentionEvent, error)

	// GetTrending retrieves distinct symbols mentioned at or after since,
	// ordered by descending mention count with ties broken by symbol.
	// limit <= 0 means no limit.
	GetTrending(ctx context.Context, since time.Time, limit int) ([]domain.TrendingSecurity, error)
}

// PriceBarStore caches daily price bars fetched from the market-data
// provider.
type PriceBarStore interface {
	// InsertBulk adds multiple bars. Returns ErrDuplicateKey if a
	// (symbol, date) pair already exists.
	InsertBulk(ctx context.Context, bars []domain.PriceBar) error

	// GetBySymbol retrieves all cached bars for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]domain.PriceBar, error)

	// GetByDateRange retrieves bars for a symbol within [start, end]
	// (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]domain.PriceBar, error)
}
