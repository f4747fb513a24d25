package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"mention-market-lab/internal/domain"
	"mention-market-lab/internal/storage"
)

func ts(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestMentionStore_GetBySymbol(t *testing.T) {
	store := NewMentionStore()
	ctx := context.Background()

	store.Add(
		domain.MentionEvent{Symbol: "AAPL", Timestamp: ts(2024, 1, 15, 10), ChannelName: "ch-1"},
		domain.MentionEvent{Symbol: "AAPL", Timestamp: ts(2024, 1, 14, 9), ChannelName: "ch-2"},
		domain.MentionEvent{Symbol: "BTC", Timestamp: ts(2024, 1, 15, 11)},
	)

	events, err := store.GetBySymbol(ctx, "AAPL", ts(2024, 1, 1, 0), ts(2024, 1, 31, 0))
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// Ordered by timestamp ASC
	if !events[0].Timestamp.Before(events[1].Timestamp) {
		t.Errorf("events not ordered by timestamp: %v, %v", events[0].Timestamp, events[1].Timestamp)
	}
}

func TestMentionStore_GetBySymbol_RangeInclusive(t *testing.T) {
	store := NewMentionStore()
	ctx := context.Background()

	edge := ts(2024, 2, 1, 0)
	store.Add(
		domain.MentionEvent{Symbol: "TSLA", Timestamp: edge},
		domain.MentionEvent{Symbol: "TSLA", Timestamp: edge.Add(-time.Second)},
	)

	events, err := store.GetBySymbol(ctx, "TSLA", edge, edge.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event at range edge, got %d", len(events))
	}
}

func TestMentionStore_GetBySymbol_EmptyIsNotError(t *testing.T) {
	store := NewMentionStore()
	ctx := context.Background()

	events, err := store.GetBySymbol(ctx, "MSFT", ts(2024, 1, 1, 0), ts(2024, 1, 31, 0))
	if err != nil {
		t.Fatalf("expected no error for empty result, got %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d", len(events))
	}
}

func TestMentionStore_GetBySymbol_InvalidSymbol(t *testing.T) {
	store := NewMentionStore()
	ctx := context.Background()

	_, err := store.GetBySymbol(ctx, "  ", ts(2024, 1, 1, 0), ts(2024, 1, 31, 0))
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMentionStore_CaseInsensitiveSymbolLookup(t *testing.T) {
	store := NewMentionStore()
	ctx := context.Background()

	store.Add(domain.MentionEvent{Symbol: "NVDA", Timestamp: ts(2024, 3, 1, 12)})

	events, err := store.GetBySymbol(ctx, "nvda", ts(2024, 3, 1, 0), ts(2024, 3, 2, 0))
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event for lower-case query, got %d", len(events))
	}
}

func TestMentionStore_GetTrending(t *testing.T) {
	store := NewMentionStore()
	ctx := context.Background()

	since := ts(2024, 5, 1, 0)
	for i := 0; i < 5; i++ {
		store.Add(domain.MentionEvent{Symbol: "B", AssetType: domain.AssetTypeEquity, Timestamp: since.Add(time.Duration(i) * time.Hour)})
		store.Add(domain.MentionEvent{Symbol: "A", AssetType: domain.AssetTypeCrypto, Timestamp: since.Add(time.Duration(i) * time.Hour)})
	}
	store.Add(domain.MentionEvent{Symbol: "C", AssetType: domain.AssetTypeEquity, Timestamp: since})
	store.Add(domain.MentionEvent{Symbol: "OLD", AssetType: domain.AssetTypeEquity, Timestamp: since.Add(-time.Hour)})

	trending, err := store.GetTrending(ctx, since, 0)
	if err != nil {
		t.Fatalf("GetTrending failed: %v", err)
	}

	if len(trending) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(trending))
	}
	// A and B tie at 5; lexical tie-break puts A first.
	if trending[0].Symbol != "A" || trending[1].Symbol != "B" || trending[2].Symbol != "C" {
		t.Errorf("unexpected order: %+v", trending)
	}
}

func TestMentionStore_AddCopiesThemes(t *testing.T) {
	store := NewMentionStore()
	ctx := context.Background()

	themes := []string{"ai"}
	store.Add(domain.MentionEvent{Symbol: "AMD", Timestamp: ts(2024, 1, 1, 0), Themes: themes})
	themes[0] = "mutated"

	events, err := store.GetBySymbol(ctx, "AMD", ts(2023, 12, 31, 0), ts(2024, 1, 2, 0))
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if events[0].Themes[0] != "ai" {
		t.Errorf("store shares theme slice with caller: %v", events[0].Themes)
	}
}
