package domain

import "time"

// MentionEvent represents a single reference to a security in an analyzed
// video chunk. Produced by joining the securities, chunk_analyses, videos
// and channels tables in PostgreSQL; immutable once fetched.
type MentionEvent struct {
	Symbol      string    // security ticker, upper case
	AssetType   string    // "equity" | "crypto"
	Timestamp   time.Time // when the mention was recorded (chunk created_at)
	ChannelName string    // source channel
	VideoTitle  string    // source video title
	PublishedAt time.Time // video publish time (may differ from Timestamp)
	Themes      []string  // associated investment themes
	Sentiment   string    // sentiment of the first associated theme, "" if none
	Source      string    // "mentioned" | "inferred"
}

// Asset type constants
const (
	AssetTypeEquity = "equity"
	AssetTypeCrypto = "crypto"
)

// Mention source constants
const (
	MentionSourceMentioned = "mentioned"
	MentionSourceInferred  = "inferred"
)

// Date returns the event's calendar day in UTC. All date-keyed aggregation
// uses this truncation.
func (e *MentionEvent) Date() time.Time {
	return e.Timestamp.UTC().Truncate(24 * time.Hour)
}
