package chart

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mention-market-lab/internal/domain"
)

func mergedRow(y int, m time.Month, d int, open, close float64, mentions int) domain.MergedRow {
	return domain.MergedRow{
		Date:         time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Open:         open,
		High:         close + 1,
		Low:          open - 1,
		Close:        close,
		Volume:       1000,
		MentionCount: mentions,
	}
}

func TestBuildDocument(t *testing.T) {
	rows := []domain.MergedRow{
		mergedRow(2024, 1, 15, 184, 185, 2),
		mergedRow(2024, 1, 16, 186, 185.5, 0),
	}

	doc := BuildDocument("AAPL", rows, time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC))

	if doc.Symbol != "AAPL" {
		t.Errorf("expected symbol AAPL, got %s", doc.Symbol)
	}
	if len(doc.Candles) != 2 || len(doc.Volume) != 2 || len(doc.Mentions) != 2 {
		t.Fatalf("expected 2 points per series, got %d/%d/%d", len(doc.Candles), len(doc.Volume), len(doc.Mentions))
	}
	if doc.Candles[0].Time != "2024-01-15" {
		t.Errorf("unexpected time encoding: %s", doc.Candles[0].Time)
	}
	if doc.RangeStart != "2024-01-15" || doc.RangeEnd != "2024-01-16" {
		t.Errorf("unexpected range: %s..%s", doc.RangeStart, doc.RangeEnd)
	}

	// Only the day with mentions gets a marker.
	if len(doc.Markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(doc.Markers))
	}
	if doc.Markers[0].Text != "2 mentions" {
		t.Errorf("unexpected marker text %q", doc.Markers[0].Text)
	}
	if doc.Markers[0].Position != "aboveBar" || doc.Markers[0].Shape != "arrowDown" {
		t.Errorf("unexpected marker layout: %+v", doc.Markers[0])
	}

	// Up day green, down day red.
	if doc.Volume[0].Color != colorUp {
		t.Errorf("expected up color on rising day, got %s", doc.Volume[0].Color)
	}
	if doc.Volume[1].Color != colorDown {
		t.Errorf("expected down color on falling day, got %s", doc.Volume[1].Color)
	}

	if doc.Stats.TotalMentions != 2 || doc.Stats.DaysWithMention != 1 {
		t.Errorf("unexpected stats: %+v", doc.Stats)
	}
	if doc.Stats.PeakDate != "2024-01-15" {
		t.Errorf("expected peak date 2024-01-15, got %s", doc.Stats.PeakDate)
	}
}

func TestBuildDocument_Empty(t *testing.T) {
	doc := BuildDocument("NOPE", nil, time.Now())

	if len(doc.Candles) != 0 || len(doc.Markers) != 0 {
		t.Errorf("expected empty series, got %d candles %d markers", len(doc.Candles), len(doc.Markers))
	}

	// Empty document must still marshal to arrays, not nulls, for the widget.
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, key := range []string{`"candles":[]`, `"markers":[]`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
}

func TestMarkerSize_Capped(t *testing.T) {
	if got := markerSize(1); got != 1.5 {
		t.Errorf("markerSize(1) = %f, want 1.5", got)
	}
	if got := markerSize(100); got != 3 {
		t.Errorf("markerSize(100) = %f, want capped 3", got)
	}
}

func TestMarkerText_Singular(t *testing.T) {
	if got := markerText(1); got != "1 mention" {
		t.Errorf("markerText(1) = %q", got)
	}
	if got := markerText(3); got != "3 mentions" {
		t.Errorf("markerText(3) = %q", got)
	}
}
