// Package server exposes the merged mention/price series over HTTP: JSON
// chart documents, trending rankings, CSV exports, and a WebSocket stream
// that pushes refreshed chart documents.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"mention-market-lab/internal/chart"
	"mention-market-lab/internal/marketdata"
	"mention-market-lab/internal/observability"
	"mention-market-lab/internal/reporting"
	"mention-market-lab/internal/service"
	"mention-market-lab/internal/storage"
)

// DefaultStreamInterval is how often the WebSocket stream refreshes a
// chart document.
const DefaultStreamInterval = 30 * time.Second

// Server serves the chart API.
type Server struct {
	svc            *service.ChartService
	logger         *log.Logger
	streamInterval time.Duration
	upgrader       websocket.Upgrader
	now            func() time.Time
}

// Option configures Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreamInterval sets the WebSocket refresh interval.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Server) {
		s.streamInterval = d
	}
}

// WithClock sets a custom clock function for deterministic output.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server around a ChartService.
func New(svc *service.ChartService, opts ...Option) *Server {
	s := &Server{
		svc:            svc,
		logger:         log.New(io.Discard, "", 0),
		streamInterval: DefaultStreamInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /api/chart/{symbol}", s.handleChart)
	mux.HandleFunc("GET /api/trending", s.handleTrending)
	mux.HandleFunc("GET /api/export/{file}", s.handleExportCSV)
	mux.HandleFunc("GET /ws/chart/{symbol}", s.handleChartStream)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	days := queryInt(r, "days", 0)

	start := time.Now()
	series, err := s.svc.MergedSeries(r.Context(), symbol, days)
	if err != nil {
		observability.RecordChartRequest("error", time.Since(start).Seconds())
		s.writeError(w, symbol, err)
		return
	}
	observability.RecordChartRequest("success", time.Since(start).Seconds())

	doc := chart.BuildDocument(series.Symbol, series.Rows, s.now())
	writeJSON(w, http.StatusOK, doc)
}

// TrendingEntry is one row of the /api/trending JSON response.
type TrendingEntry struct {
	Rank         int    `json:"rank"`
	Symbol       string `json:"symbol"`
	AssetType    string `json:"asset_type"`
	MentionCount int    `json:"mention_count"`
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	limit := queryInt(r, "limit", 10)

	observability.RecordTrendingRequest()
	trending, err := s.svc.Trending(r.Context(), days, limit)
	if err != nil {
		s.writeError(w, "", err)
		return
	}

	entries := make([]TrendingEntry, 0, len(trending))
	for i, t := range trending {
		entries = append(entries, TrendingEntry{
			Rank:         i + 1,
			Symbol:       t.Symbol,
			AssetType:    t.AssetType,
			MentionCount: t.MentionCount,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleExportCSV serves /api/export/{symbol}.csv and the special
// /api/export/trending.csv ranking export.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	name, ok := strings.CutSuffix(file, ".csv")
	if !ok || name == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown export " + file})
		return
	}

	var body string
	if name == "trending" {
		trending, err := s.svc.Trending(r.Context(), queryInt(r, "days", 7), queryInt(r, "limit", 10))
		if err != nil {
			s.writeError(w, "", err)
			return
		}
		body = reporting.RenderTrendingCSV(trending)
	} else {
		series, err := s.svc.MergedSeries(r.Context(), name, queryInt(r, "days", 0))
		if err != nil {
			s.writeError(w, name, err)
			return
		}
		name = series.Symbol
		body = reporting.RenderCSV(series.Rows)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	io.WriteString(w, body)
}

// handleChartStream upgrades to WebSocket and pushes a refreshed chart
// document immediately and then on every tick until the client goes away.
func (s *Server) handleChartStream(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	days := queryInt(r, "days", 0)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade for %s: %v", symbol, err)
		return
	}
	defer conn.Close()

	observability.StreamOpened()
	defer observability.StreamClosed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader loop: we never expect client messages, but reading is the
	// only way to notice close frames.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.pushDocument(ctx, conn, symbol, days); err != nil {
		return
	}

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			if err := s.pushDocument(ctx, conn, symbol, days); err != nil {
				return
			}
		}
	}
}

func (s *Server) pushDocument(ctx context.Context, conn *websocket.Conn, symbol string, days int) error {
	series, err := s.svc.MergedSeries(ctx, symbol, days)
	if err != nil {
		s.logger.Printf("stream refresh for %s: %v", symbol, err)
		conn.WriteJSON(map[string]string{"error": err.Error(), "symbol": symbol})
		return err
	}
	return conn.WriteJSON(chart.BuildDocument(series.Symbol, series.Rows, s.now()))
}

// writeError maps service errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, symbol string, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err))
	case errors.Is(err, marketdata.ErrNoMarketData):
		writeJSON(w, http.StatusNotFound, errorBody(err))
	case errors.Is(err, storage.ErrUnavailable):
		s.logger.Printf("backend unavailable: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody(err))
	default:
		s.logger.Printf("request for %q failed: %v", symbol, err)
		writeJSON(w, http.StatusInternalServerError, errorBody(err))
	}
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
