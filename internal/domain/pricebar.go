package domain

import "time"

// PriceBar represents one trading day's OHLCV for a security.
// Corresponds to the market_data cache table in ClickHouse.
type PriceBar struct {
	Symbol string    // security ticker, upper case
	Date   time.Time // calendar day (UTC midnight)
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MergedRow combines one price bar with same-day mention aggregates.
// There is exactly one MergedRow per input PriceBar date; MentionCount is 0
// and Context empty for days without mentions.
type MergedRow struct {
	Date         time.Time // calendar day (UTC midnight)
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	MentionCount int
	Context      []MentionEvent // mentions whose timestamp falls on Date
}
