// Package main is a command-line exporter: fetch one symbol's merged
// mention/price series (or the trending ranking) and write it as CSV or a
// Markdown report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"mention-market-lab/internal/marketdata"
	"mention-market-lab/internal/reporting"
	"mention-market-lab/internal/service"
	pgstore "mention-market-lab/internal/storage/postgres"
)

func main() {
	godotenv.Load()

	symbol := flag.String("symbol", "", "Security symbol to export (e.g. NVDA, BTC)")
	days := flag.Int("days", service.DefaultLookbackDays, "Lookback window in calendar days")
	trending := flag.Bool("trending", false, "Export the trending ranking instead of a symbol series")
	limit := flag.Int("limit", 10, "Maximum trending entries")
	format := flag.String("format", "csv", "Output format: csv or markdown")
	outDir := flag.String("out", "", "Output directory (default: stdout)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	marketDataURL := flag.String("market-data-url", envOr("MARKET_DATA_URL", marketdata.DefaultBaseURL), "Market data API base URL")
	flag.Parse()

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required")
		os.Exit(1)
	}
	if !*trending && *symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: --symbol is required (or use --trending)")
		os.Exit(1)
	}
	if *format != "csv" && *format != "markdown" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want csv or markdown)\n", *format)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	provider := marketdata.NewYahooClient(marketdata.WithBaseURL(*marketDataURL))
	svc := service.New(pgstore.NewMentionStore(pool), provider)

	var name, body string
	if *trending {
		name, body, err = exportTrending(ctx, svc, *days, *limit, *format)
	} else {
		name, body, err = exportSymbol(ctx, svc, *symbol, *days, *format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *outDir == "" {
		fmt.Print(body)
		return
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	path := filepath.Join(*outDir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}

func exportSymbol(ctx context.Context, svc *service.ChartService, symbol string, days int, format string) (name, body string, err error) {
	series, err := svc.MergedSeries(ctx, symbol, days)
	if err != nil {
		return "", "", err
	}

	if format == "markdown" {
		report := reporting.NewSymbolReport(series.Symbol, series.Rows, time.Now().UTC())
		return series.Symbol + ".md", reporting.RenderMarkdown(report), nil
	}
	return series.Symbol + ".csv", reporting.RenderCSV(series.Rows), nil
}

func exportTrending(ctx context.Context, svc *service.ChartService, days, limit int, format string) (name, body string, err error) {
	ranking, err := svc.Trending(ctx, days, limit)
	if err != nil {
		return "", "", err
	}

	if format == "markdown" {
		var b strings.Builder
		fmt.Fprintf(&b, "# Trending Securities (last %d days)\n\n", days)
		b.WriteString("| Rank | Symbol | Type | Mentions |\n")
		b.WriteString("|------|--------|------|----------|\n")
		for i, t := range ranking {
			fmt.Fprintf(&b, "| %d | %s | %s | %d |\n", i+1, t.Symbol, t.AssetType, t.MentionCount)
		}
		return "trending.md", b.String(), nil
	}
	return "trending.csv", reporting.RenderTrendingCSV(ranking), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
