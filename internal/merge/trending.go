package merge

import (
	"sort"
	"time"

	"mention-market-lab/internal/domain"
)

// RankTrending counts mentions per distinct symbol over events whose
// timestamp is at or after since, and returns symbols ordered by descending
// mention count. Ties are broken by ascending symbol for deterministic
// output. limit <= 0 means no limit.
func RankTrending(events []domain.MentionEvent, since time.Time, limit int) []domain.TrendingSecurity {
	type entry struct {
		assetType string
		count     int
	}

	counts := make(map[string]*entry)
	for _, e := range events {
		if e.Timestamp.Before(since) {
			continue
		}
		ent, ok := counts[e.Symbol]
		if !ok {
			ent = &entry{assetType: e.AssetType}
			counts[e.Symbol] = ent
		}
		ent.count++
	}

	ranked := make([]domain.TrendingSecurity, 0, len(counts))
	for sym, ent := range counts {
		ranked = append(ranked, domain.TrendingSecurity{
			Symbol:       sym,
			AssetType:    ent.assetType,
			MentionCount: ent.count,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MentionCount != ranked[j].MentionCount {
			return ranked[i].MentionCount > ranked[j].MentionCount
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
