package domain

// TrendingSecurity is one entry in a mention-volume ranking over a
// lookback window.
type TrendingSecurity struct {
	Symbol       string
	AssetType    string
	MentionCount int
}
