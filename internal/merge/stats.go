package merge

import (
	"math"
	"time"

	"mention-market-lab/internal/domain"
)

// SeriesStats holds derived statistics over a merged series.
type SeriesStats struct {
	// Price
	PriceChangePct          float64 // (last close - first close) / first close * 100
	ChangeSinceFirstMention float64 // same, anchored at the first day with mentions; 0 if none
	FirstClose              float64
	LastClose               float64

	// Mentions
	TotalMentions     int
	DaysWithMention   int
	AvgMentionsPerDay float64
	PeakDate          time.Time // day with the most mentions (earliest on ties)
	PeakMentions      int

	// Correlation of daily mention counts with returns. Zero when undefined
	// (fewer than 3 rows or no variance on either side).
	Correlation       float64 // same-day returns
	LaggedCorrelation float64 // next-day returns
}

// ComputeStats derives summary statistics from a merged series.
// Rows are assumed to be in ascending date order, as produced by Merge.
func ComputeStats(rows []domain.MergedRow) SeriesStats {
	var s SeriesStats
	if len(rows) == 0 {
		return s
	}

	s.FirstClose = rows[0].Close
	s.LastClose = rows[len(rows)-1].Close
	if s.FirstClose != 0 {
		s.PriceChangePct = (s.LastClose - s.FirstClose) / s.FirstClose * 100
	}

	for _, r := range rows {
		s.TotalMentions += r.MentionCount
		if r.MentionCount > 0 {
			s.DaysWithMention++
			if r.MentionCount > s.PeakMentions {
				s.PeakMentions = r.MentionCount
				s.PeakDate = r.Date
			}
		}
	}
	s.AvgMentionsPerDay = float64(s.TotalMentions) / float64(len(rows))

	if first, ok := firstMentionClose(rows); ok && first != 0 {
		s.ChangeSinceFirstMention = (s.LastClose - first) / first * 100
	}

	s.Correlation, s.LaggedCorrelation = mentionReturnCorrelation(rows)

	return s
}

// firstMentionClose returns the close of the earliest day with mentions.
func firstMentionClose(rows []domain.MergedRow) (float64, bool) {
	for _, r := range rows {
		if r.MentionCount > 0 {
			return r.Close, true
		}
	}
	return 0, false
}

// mentionReturnCorrelation computes Pearson correlation between daily mention
// counts and daily close-to-close returns, both same-day and shifted so that
// mentions on day t are paired with the return on day t+1.
func mentionReturnCorrelation(rows []domain.MergedRow) (sameDay, nextDay float64) {
	n := len(rows)
	if n < 3 {
		return 0, 0
	}

	// returns[i] is the return realized on rows[i+1].
	returns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if rows[i-1].Close == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (rows[i].Close-rows[i-1].Close)/rows[i-1].Close)
	}

	// Same-day: mentions on day i vs return realized on day i.
	sameMentions := make([]float64, len(returns))
	for i := range returns {
		sameMentions[i] = float64(rows[i+1].MentionCount)
	}
	sameDay = pearson(sameMentions, returns)

	// Lagged: mentions on day i vs return realized on day i+1.
	lagMentions := make([]float64, len(returns))
	for i := range returns {
		lagMentions[i] = float64(rows[i].MentionCount)
	}
	nextDay = pearson(lagMentions, returns)

	return sameDay, nextDay
}

// pearson computes the Pearson correlation coefficient of two equal-length
// series. Returns 0 when either side has no variance.
func pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}

	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
