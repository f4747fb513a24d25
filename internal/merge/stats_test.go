package merge

import (
	"math"
	"testing"
	"time"

	"mention-market-lab/internal/domain"
)

func row(date time.Time, close float64, mentions int) domain.MergedRow {
	return domain.MergedRow{Date: date, Close: close, MentionCount: mentions}
}

func TestComputeStats_PriceChangePct(t *testing.T) {
	rows := []domain.MergedRow{
		row(day(2024, 1, 15), 185.0, 2),
		row(day(2024, 1, 16), 186.0, 0),
	}

	s := ComputeStats(rows)

	// (186 - 185) / 185 * 100 ≈ 0.5405
	want := (186.0 - 185.0) / 185.0 * 100
	if math.Abs(s.PriceChangePct-want) > 1e-9 {
		t.Errorf("expected price change %.4f, got %.4f", want, s.PriceChangePct)
	}
	if s.TotalMentions != 2 {
		t.Errorf("expected 2 total mentions, got %d", s.TotalMentions)
	}
	if s.DaysWithMention != 1 {
		t.Errorf("expected 1 day with mentions, got %d", s.DaysWithMention)
	}
	if !s.PeakDate.Equal(day(2024, 1, 15)) {
		t.Errorf("expected peak on 2024-01-15, got %v", s.PeakDate)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)
	if s.PriceChangePct != 0 || s.TotalMentions != 0 {
		t.Errorf("expected zero stats for empty series, got %+v", s)
	}
}

func TestComputeStats_ZeroFirstClose(t *testing.T) {
	rows := []domain.MergedRow{
		row(day(2024, 1, 1), 0, 0),
		row(day(2024, 1, 2), 5, 0),
	}

	s := ComputeStats(rows)
	if s.PriceChangePct != 0 {
		t.Errorf("expected 0 change with zero first close, got %f", s.PriceChangePct)
	}
}

func TestComputeStats_ChangeSinceFirstMention(t *testing.T) {
	rows := []domain.MergedRow{
		row(day(2024, 1, 1), 100, 0),
		row(day(2024, 1, 2), 110, 3), // first mention day
		row(day(2024, 1, 3), 121, 0),
	}

	s := ComputeStats(rows)
	want := (121.0 - 110.0) / 110.0 * 100
	if math.Abs(s.ChangeSinceFirstMention-want) > 1e-9 {
		t.Errorf("expected %.4f since first mention, got %.4f", want, s.ChangeSinceFirstMention)
	}
}

func TestComputeStats_PerfectLaggedCorrelation(t *testing.T) {
	// Mentions on day t exactly predict the magnitude of the return on t+1.
	rows := []domain.MergedRow{
		row(day(2024, 1, 1), 100, 1),
		row(day(2024, 1, 2), 101, 2), // return 1%
		row(day(2024, 1, 3), 103.02, 3), // return 2%
		row(day(2024, 1, 4), 106.1106, 0), // return 3%
	}

	s := ComputeStats(rows)
	if math.Abs(s.LaggedCorrelation-1.0) > 1e-6 {
		t.Errorf("expected lagged correlation ~1.0, got %f", s.LaggedCorrelation)
	}
}

func TestComputeStats_NoVarianceCorrelationIsZero(t *testing.T) {
	// Constant mention counts: correlation undefined, reported as 0.
	rows := []domain.MergedRow{
		row(day(2024, 1, 1), 100, 1),
		row(day(2024, 1, 2), 105, 1),
		row(day(2024, 1, 3), 95, 1),
		row(day(2024, 1, 4), 102, 1),
	}

	s := ComputeStats(rows)
	if s.Correlation != 0 || s.LaggedCorrelation != 0 {
		t.Errorf("expected 0 correlation with constant mentions, got %f / %f", s.Correlation, s.LaggedCorrelation)
	}
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	if got := pearson(x, y); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected 1.0, got %f", got)
	}

	yInv := []float64{8, 6, 4, 2}
	if got := pearson(x, yInv); math.Abs(got+1.0) > 1e-9 {
		t.Errorf("expected -1.0, got %f", got)
	}
}
