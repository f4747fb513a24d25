// Package reporting renders merged series and trending rankings as CSV and
// Markdown.
package reporting

import (
	"time"

	"mention-market-lab/internal/domain"
	"mention-market-lab/internal/merge"
)

// SymbolReport is the renderable summary for one symbol's merged series.
type SymbolReport struct {
	Symbol      string
	GeneratedAt time.Time
	Rows        []domain.MergedRow
	Stats       merge.SeriesStats

	// TopMentionDays lists the days with the most mentions, descending,
	// at most topMentionDays entries.
	TopMentionDays []domain.MergedRow
}

// topMentionDays caps the "top mention days" section.
const topMentionDays = 5

// NewSymbolReport builds a report from a merged series.
// Rows are assumed to be in ascending date order.
func NewSymbolReport(symbol string, rows []domain.MergedRow, generatedAt time.Time) *SymbolReport {
	r := &SymbolReport{
		Symbol:      symbol,
		GeneratedAt: generatedAt.UTC(),
		Rows:        rows,
		Stats:       merge.ComputeStats(rows),
	}
	r.TopMentionDays = pickTopMentionDays(rows, topMentionDays)
	return r
}

// pickTopMentionDays returns up to n rows with the highest mention counts,
// descending, ties broken by earlier date.
func pickTopMentionDays(rows []domain.MergedRow, n int) []domain.MergedRow {
	var withMentions []domain.MergedRow
	for _, r := range rows {
		if r.MentionCount > 0 {
			withMentions = append(withMentions, r)
		}
	}

	// Selection by repeated max keeps the original slice untouched; the
	// candidate set is small (bounded by the lookback window).
	var top []domain.MergedRow
	used := make(map[int]bool)
	for len(top) < n && len(top) < len(withMentions) {
		best := -1
		for i, r := range withMentions {
			if used[i] {
				continue
			}
			if best == -1 || r.MentionCount > withMentions[best].MentionCount {
				best = i
			}
		}
		used[best] = true
		top = append(top, withMentions[best])
	}
	return top
}
