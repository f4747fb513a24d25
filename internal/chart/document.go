// Package chart builds JSON documents consumable by lightweight-charts
// style widgets: a candlestick series, volume and mention histograms, and
// per-day mention markers.
package chart

import (
	"strconv"
	"time"

	"mention-market-lab/internal/domain"
	"mention-market-lab/internal/merge"
)

// Time encoding expected by the chart widget.
const timeLayout = "2006-01-02"

// Widget colors.
const (
	colorUp      = "#26a69a"
	colorDown    = "#ef5350"
	colorMention = "#2196F3"
)

// Candle is one candlestick point.
type Candle struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// HistogramPoint is one histogram bar.
type HistogramPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Marker is one mention marker drawn on the price series.
type Marker struct {
	Time     string  `json:"time"`
	Position string  `json:"position"`
	Color    string  `json:"color"`
	Shape    string  `json:"shape"`
	Text     string  `json:"text"`
	Size     float64 `json:"size"`
}

// Stats is the summary block rendered next to the chart.
type Stats struct {
	PriceChangePct          float64 `json:"price_change_pct"`
	ChangeSinceFirstMention float64 `json:"change_since_first_mention_pct"`
	TotalMentions           int     `json:"total_mentions"`
	DaysWithMention         int     `json:"days_with_mentions"`
	AvgMentionsPerDay       float64 `json:"avg_mentions_per_day"`
	Correlation             float64 `json:"mention_return_correlation"`
	LaggedCorrelation       float64 `json:"next_day_correlation"`
	PeakDate                string  `json:"peak_mention_date,omitempty"`
	PeakMentions            int     `json:"peak_mention_count"`
}

// Document is the full payload for one symbol's chart.
type Document struct {
	Symbol      string           `json:"symbol"`
	GeneratedAt string           `json:"generated_at"`
	RangeStart  string           `json:"range_start,omitempty"`
	RangeEnd    string           `json:"range_end,omitempty"`
	Candles     []Candle         `json:"candles"`
	Volume      []HistogramPoint `json:"volume"`
	Mentions    []HistogramPoint `json:"mentions"`
	Markers     []Marker         `json:"markers"`
	Stats       Stats            `json:"stats"`
}

// BuildDocument renders a merged series into a chart document.
// Rows are assumed to be in ascending date order, as produced by merge.Merge.
func BuildDocument(symbol string, rows []domain.MergedRow, generatedAt time.Time) *Document {
	doc := &Document{
		Symbol:      symbol,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Candles:     make([]Candle, 0, len(rows)),
		Volume:      make([]HistogramPoint, 0, len(rows)),
		Mentions:    make([]HistogramPoint, 0, len(rows)),
		Markers:     []Marker{},
	}

	for _, r := range rows {
		day := r.Date.Format(timeLayout)

		doc.Candles = append(doc.Candles, Candle{
			Time: day, Open: r.Open, High: r.High, Low: r.Low, Close: r.Close,
		})

		volColor := colorUp
		if r.Close < r.Open {
			volColor = colorDown
		}
		doc.Volume = append(doc.Volume, HistogramPoint{Time: day, Value: r.Volume, Color: volColor})
		doc.Mentions = append(doc.Mentions, HistogramPoint{Time: day, Value: float64(r.MentionCount), Color: colorMention})

		if r.MentionCount > 0 {
			doc.Markers = append(doc.Markers, Marker{
				Time:     day,
				Position: "aboveBar",
				Color:    colorMention,
				Shape:    "arrowDown",
				Text:     markerText(r.MentionCount),
				Size:     markerSize(r.MentionCount),
			})
		}
	}

	if len(rows) > 0 {
		doc.RangeStart = rows[0].Date.Format(timeLayout)
		doc.RangeEnd = rows[len(rows)-1].Date.Format(timeLayout)
	}

	s := merge.ComputeStats(rows)
	doc.Stats = Stats{
		PriceChangePct:          s.PriceChangePct,
		ChangeSinceFirstMention: s.ChangeSinceFirstMention,
		TotalMentions:           s.TotalMentions,
		DaysWithMention:         s.DaysWithMention,
		AvgMentionsPerDay:       s.AvgMentionsPerDay,
		Correlation:             s.Correlation,
		LaggedCorrelation:       s.LaggedCorrelation,
		PeakMentions:            s.PeakMentions,
	}
	if s.PeakMentions > 0 {
		doc.Stats.PeakDate = s.PeakDate.Format(timeLayout)
	}

	return doc
}

// markerSize scales marker size with mention count, capped by the widget's
// maximum.
func markerSize(count int) float64 {
	size := float64(count)*0.5 + 1
	if size > 3 {
		size = 3
	}
	return size
}

func markerText(count int) string {
	if count == 1 {
		return "1 mention"
	}
	return strconv.Itoa(count) + " mentions"
}
