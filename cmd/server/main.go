// Package main runs the chart API server: mention events from PostgreSQL,
// daily price bars from the market-data API, merged series over HTTP and
// WebSocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mention-market-lab/internal/marketdata"
	"mention-market-lab/internal/server"
	"mention-market-lab/internal/service"
	"mention-market-lab/internal/storage"
	chstore "mention-market-lab/internal/storage/clickhouse"
	"mention-market-lab/internal/storage/memory"
	"mention-market-lab/internal/storage/migrations"
	pgstore "mention-market-lab/internal/storage/postgres"
)

func main() {
	// Load .env if present; system env vars win.
	godotenv.Load()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("SERVER_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional price-bar cache)")
	marketDataURL := flag.String("market-data-url", envOr("MARKET_DATA_URL", marketdata.DefaultBaseURL), "Market data API base URL")
	streamInterval := flag.Duration("stream-interval", server.DefaultStreamInterval, "WebSocket chart refresh interval")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	migrate := flag.Bool("migrate", false, "Apply schema migrations on startup")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mentions, cache, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *migrate, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	provider := marketdata.NewYahooClient(marketdata.WithBaseURL(*marketDataURL))

	svcOpts := []service.Option{service.WithLogger(logger)}
	if cache != nil {
		svcOpts = append(svcOpts, service.WithCache(cache))
	}
	svc := service.New(mentions, provider, svcOpts...)

	srv := server.New(svc,
		server.WithLogger(logger),
		server.WithStreamInterval(*streamInterval),
	)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	if err := srv.ListenAndServe(ctx, *addr); err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores builds the mention store and the optional price-bar cache.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool, logger *log.Logger) (storage.MentionStore, storage.PriceBarStore, func(), error) {
	if useMemory {
		return memory.NewMentionStore(), memory.NewPriceBarStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
	}

	mentions := pgstore.NewMentionStore(pool)

	// Price-bar cache is optional: without ClickHouse every request goes
	// straight to the market-data API.
	if clickhouseDSN == "" {
		return mentions, nil, func() { pool.Close() }, nil
	}

	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if migrate {
		if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
			chConn.Close()
			pool.Close()
			return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
	}

	logger.Println("Price-bar cache enabled (ClickHouse)")

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return mentions, chstore.NewPriceBarStore(chConn), cleanup, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
