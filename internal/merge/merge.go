// Package merge joins sparse mention events with dense daily price bars on a
// shared calendar, producing one row per trading day.
package merge

import (
	"errors"
	"sort"
	"time"

	"mention-market-lab/internal/domain"
)

// Errors returned by Merge on malformed price-bar input.
var (
	// ErrDuplicatePriceDate is returned when two price bars share a calendar
	// day. Daily bars are expected to be unique per day; duplicates indicate
	// malformed upstream data and are rejected rather than deduplicated.
	ErrDuplicatePriceDate = errors.New("duplicate price bar date")

	// ErrUnsortedPriceBars is returned when price bars are not in ascending
	// date order.
	ErrUnsortedPriceBars = errors.New("price bars not in ascending date order")
)

// dayBucket accumulates mentions for one calendar day.
type dayBucket struct {
	count   int
	context []domain.MentionEvent
}

// Merge performs a left join of price bars against mention events keyed on
// calendar date (UTC). The result has exactly the same cardinality and date
// ordering as bars. Events whose date has no matching bar are dropped;
// bars with no events get MentionCount 0 and empty Context. Event order is
// irrelevant: aggregation is per-day counting.
func Merge(bars []domain.PriceBar, events []domain.MentionEvent) ([]domain.MergedRow, error) {
	if len(bars) == 0 {
		return []domain.MergedRow{}, nil
	}

	// Validate bar ordering and uniqueness before touching events.
	seen := make(map[time.Time]struct{}, len(bars))
	var prev time.Time
	for i, b := range bars {
		day := b.Date.UTC().Truncate(24 * time.Hour)
		if _, dup := seen[day]; dup {
			return nil, ErrDuplicatePriceDate
		}
		seen[day] = struct{}{}
		if i > 0 && !day.After(prev) {
			return nil, ErrUnsortedPriceBars
		}
		prev = day
	}

	// Accumulate mention counts and context per day in one pass.
	buckets := make(map[time.Time]*dayBucket)
	for _, e := range events {
		day := e.Date()
		b, ok := buckets[day]
		if !ok {
			b = &dayBucket{}
			buckets[day] = b
		}
		b.count++
		b.context = append(b.context, e)
	}

	rows := make([]domain.MergedRow, 0, len(bars))
	for _, bar := range bars {
		day := bar.Date.UTC().Truncate(24 * time.Hour)
		row := domain.MergedRow{
			Date:    day,
			Open:    bar.Open,
			High:    bar.High,
			Low:     bar.Low,
			Close:   bar.Close,
			Volume:  bar.Volume,
			Context: []domain.MentionEvent{},
		}
		if b, ok := buckets[day]; ok {
			// Context is sorted so the output does not depend on event
			// input order.
			sort.SliceStable(b.context, func(i, j int) bool {
				return b.context[i].Timestamp.Before(b.context[j].Timestamp)
			})
			row.MentionCount = b.count
			row.Context = b.context
		}
		rows = append(rows, row)
	}

	return rows, nil
}
