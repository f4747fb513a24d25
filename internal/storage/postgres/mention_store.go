package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"mention-market-lab/internal/domain"
	"mention-market-lab/internal/storage"
)

// MentionStore implements storage.MentionStore using PostgreSQL.
type MentionStore struct {
	pool *Pool
}

// NewMentionStore creates a new MentionStore.
func NewMentionStore(pool *Pool) *MentionStore {
	return &MentionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MentionStore = (*MentionStore)(nil)

// GetBySymbol retrieves all mention events for a symbol within [start, end],
// ordered by timestamp ASC. Themes are aggregated per mention; the sentiment
// of the first theme (by id) is carried on the event.
func (s *MentionStore) GetBySymbol(ctx context.Context, symbol string, start, end time.Time) ([]domain.MentionEvent, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT
			sec.symbol,
			sec.asset_type,
			sec.source,
			ca.created_at,
			v.title,
			v.published_at,
			ch.channel_name,
			COALESCE(array_agg(it.theme ORDER BY it.id) FILTER (WHERE it.theme IS NOT NULL), '{}') AS themes,
			COALESCE((array_agg(it.sentiment ORDER BY it.id) FILTER (WHERE it.sentiment IS NOT NULL))[1], '') AS sentiment
		FROM securities sec
		JOIN chunk_analyses ca ON ca.id = sec.chunk_analysis_id
		JOIN videos v ON v.id = ca.video_id
		JOIN channels ch ON ch.id = v.channel_id
		LEFT JOIN investment_themes it ON it.security_id = sec.id
		WHERE sec.symbol = $1
		  AND ca.created_at >= $2
		  AND ca.created_at <= $3
		GROUP BY sec.id, sec.symbol, sec.asset_type, sec.source, ca.created_at, v.title, v.published_at, ch.channel_name
		ORDER BY ca.created_at ASC, sec.id ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, queryError("get mentions by symbol", err)
	}
	defer rows.Close()

	return scanMentions(rows)
}

// GetTrending retrieves distinct symbols mentioned at or after since,
// ordered by descending mention count, ties broken by symbol ASC.
func (s *MentionStore) GetTrending(ctx context.Context, since time.Time, limit int) ([]domain.TrendingSecurity, error) {
	query := `
		SELECT sec.symbol, sec.asset_type, COUNT(*) AS mention_count
		FROM securities sec
		JOIN chunk_analyses ca ON ca.id = sec.chunk_analysis_id
		WHERE ca.created_at >= $1
		GROUP BY sec.symbol, sec.asset_type
		ORDER BY mention_count DESC, sec.symbol ASC
	`
	args := []any{since}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, queryError("get trending securities", err)
	}
	defer rows.Close()

	var result []domain.TrendingSecurity
	for rows.Next() {
		var t domain.TrendingSecurity
		var count int64
		if err := rows.Scan(&t.Symbol, &t.AssetType, &count); err != nil {
			return nil, fmt.Errorf("scan trending row: %w", err)
		}
		t.MentionCount = int(count)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate trending rows", err)
	}

	return result, nil
}

// scanMentions scans joined rows into mention events.
func scanMentions(rows pgx.Rows) ([]domain.MentionEvent, error) {
	var events []domain.MentionEvent

	for rows.Next() {
		var e domain.MentionEvent
		err := rows.Scan(
			&e.Symbol,
			&e.AssetType,
			&e.Source,
			&e.Timestamp,
			&e.VideoTitle,
			&e.PublishedAt,
			&e.ChannelName,
			&e.Themes,
			&e.Sentiment,
		)
		if err != nil {
			return nil, fmt.Errorf("scan mention row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, queryError("iterate mention rows", err)
	}

	return events, nil
}
