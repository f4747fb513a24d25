package reporting

import (
	"fmt"
	"strings"

	"mention-market-lab/internal/domain"
)

// RenderCSV renders a merged series as a CSV string.
func RenderCSV(rows []domain.MergedRow) string {
	var sb strings.Builder

	sb.WriteString("date,open,high,low,close,volume,mention_count\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.0f,%d\n",
			r.Date.Format("2006-01-02"),
			r.Open,
			r.High,
			r.Low,
			r.Close,
			r.Volume,
			r.MentionCount,
		))
	}

	return sb.String()
}

// RenderTrendingCSV renders a trending ranking as a CSV string.
func RenderTrendingCSV(trending []domain.TrendingSecurity) string {
	var sb strings.Builder

	sb.WriteString("rank,symbol,asset_type,mention_count\n")

	for i, t := range trending {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%d\n",
			i+1,
			t.Symbol,
			t.AssetType,
			t.MentionCount,
		))
	}

	return sb.String()
}
