package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a symbol report as a Markdown string.
func RenderMarkdown(r *SymbolReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s Mention/Price Report\n\n", r.Symbol))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	if len(r.Rows) == 0 {
		sb.WriteString("No market data available for this symbol in the requested range.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Date range: %s to %s (%d trading days)\n\n",
		r.Rows[0].Date.Format("2006-01-02"),
		r.Rows[len(r.Rows)-1].Date.Format("2006-01-02"),
		len(r.Rows)))

	sb.WriteString("## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Price Change | %+.2f%% |\n", r.Stats.PriceChangePct))
	if r.Stats.DaysWithMention > 0 {
		sb.WriteString(fmt.Sprintf("| Change Since First Mention | %+.2f%% |\n", r.Stats.ChangeSinceFirstMention))
	}
	sb.WriteString(fmt.Sprintf("| Total Mentions | %d |\n", r.Stats.TotalMentions))
	sb.WriteString(fmt.Sprintf("| Days With Mentions | %d |\n", r.Stats.DaysWithMention))
	sb.WriteString(fmt.Sprintf("| Avg Mentions/Day | %.2f |\n", r.Stats.AvgMentionsPerDay))
	sb.WriteString(fmt.Sprintf("| Mention/Return Correlation | %.3f |\n", r.Stats.Correlation))
	sb.WriteString(fmt.Sprintf("| Next-Day Correlation | %.3f |\n", r.Stats.LaggedCorrelation))
	sb.WriteString("\n")

	if len(r.TopMentionDays) > 0 {
		sb.WriteString("## Top Mention Days\n\n")
		sb.WriteString("| Date | Mentions | Close |\n")
		sb.WriteString("|------|----------|-------|\n")
		for _, row := range r.TopMentionDays {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f |\n",
				row.Date.Format("2006-01-02"), row.MentionCount, row.Close))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
