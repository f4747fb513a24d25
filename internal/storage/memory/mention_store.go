// Package memory provides in-memory storage implementations used by tests
// and by --use-memory mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mention-market-lab/internal/domain"
	"mention-market-lab/internal/merge"
	"mention-market-lab/internal/storage"
)

// MentionStore is an in-memory implementation of storage.MentionStore.
type MentionStore struct {
	mu     sync.RWMutex
	events []domain.MentionEvent
}

// NewMentionStore creates a new in-memory mention store.
func NewMentionStore() *MentionStore {
	return &MentionStore{}
}

// Compile-time interface check.
var _ storage.MentionStore = (*MentionStore)(nil)

// Add appends mention events. Not part of storage.MentionStore: mention
// data is produced externally, so only fixtures and demo mode write here.
func (s *MentionStore) Add(events ...domain.MentionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		cp := e
		cp.Themes = append([]string(nil), e.Themes...)
		s.events = append(s.events, cp)
	}
}

// GetBySymbol retrieves all mention events for a symbol within [start, end],
// ordered by timestamp ASC.
func (s *MentionStore) GetBySymbol(_ context.Context, symbol string, start, end time.Time) ([]domain.MentionEvent, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.MentionEvent
	for _, e := range s.events {
		if e.Symbol != symbol {
			continue
		}
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		cp := e
		cp.Themes = append([]string(nil), e.Themes...)
		result = append(result, cp)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// GetTrending retrieves distinct symbols mentioned at or after since,
// ordered by descending mention count, ties broken by symbol ASC.
func (s *MentionStore) GetTrending(_ context.Context, since time.Time, limit int) ([]domain.TrendingSecurity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return merge.RankTrending(s.events, since, limit), nil
}
