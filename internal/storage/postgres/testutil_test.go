package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container and applies the mention schema.
// Returns a cleanup function that must be called after tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	applySchema(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// applySchema creates the mention tables. Inline rather than importing the
// migrations package to avoid an import cycle with the embedded FS consumer.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS channels (
			id BIGSERIAL PRIMARY KEY,
			channel_name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id BIGSERIAL PRIMARY KEY,
			channel_id BIGINT NOT NULL REFERENCES channels(id),
			title TEXT NOT NULL,
			published_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunk_analyses (
			id BIGSERIAL PRIMARY KEY,
			video_id BIGINT NOT NULL REFERENCES videos(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS securities (
			id BIGSERIAL PRIMARY KEY,
			chunk_analysis_id BIGINT NOT NULL REFERENCES chunk_analyses(id),
			symbol TEXT NOT NULL,
			asset_type TEXT NOT NULL DEFAULT 'equity',
			source TEXT NOT NULL DEFAULT 'mentioned',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS investment_themes (
			id BIGSERIAL PRIMARY KEY,
			security_id BIGINT NOT NULL REFERENCES securities(id),
			theme TEXT NOT NULL,
			sentiment TEXT
		)`,
	}

	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err, "failed to apply schema")
	}
}

// mentionFixture describes one mention row for insertion across the joined
// tables.
type mentionFixture struct {
	symbol    string
	assetType string
	source    string
	createdAt time.Time
	channel   string
	title     string
	published time.Time
	themes    []string
	sentiment string
}

// insertMention inserts one mention fixture through all tables.
func insertMention(t *testing.T, ctx context.Context, pool *Pool, f mentionFixture) {
	t.Helper()

	var channelID int64
	err := pool.QueryRow(ctx, `
		INSERT INTO channels (channel_name) VALUES ($1)
		ON CONFLICT (channel_name) DO UPDATE SET channel_name = EXCLUDED.channel_name
		RETURNING id
	`, f.channel).Scan(&channelID)
	require.NoError(t, err)

	var videoID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO videos (channel_id, title, published_at) VALUES ($1, $2, $3) RETURNING id
	`, channelID, f.title, f.published).Scan(&videoID)
	require.NoError(t, err)

	var chunkID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO chunk_analyses (video_id, created_at) VALUES ($1, $2) RETURNING id
	`, videoID, f.createdAt).Scan(&chunkID)
	require.NoError(t, err)

	assetType := f.assetType
	if assetType == "" {
		assetType = "equity"
	}
	source := f.source
	if source == "" {
		source = "mentioned"
	}

	var securityID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO securities (chunk_analysis_id, symbol, asset_type, source, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id
	`, chunkID, f.symbol, assetType, source, f.createdAt).Scan(&securityID)
	require.NoError(t, err)

	for _, theme := range f.themes {
		_, err = pool.Exec(ctx, `
			INSERT INTO investment_themes (security_id, theme, sentiment) VALUES ($1, $2, $3)
		`, securityID, theme, f.sentiment)
		require.NoError(t, err)
	}
}
