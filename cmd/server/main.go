package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quotefetch/internal/config"
	"quotefetch/internal/httpx"
	"quotefetch/internal/logger"
	"quotefetch/internal/quote"
)

type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(logger.Options{Env: cfg.Env, Level: cfg.Log.Level, File: cfg.Log.File, App: "server"})

	if cfg.Quote.BaseURL == "" {
		log.Error("no endpoint configured; set QUOTE_BASE_URL")
		os.Exit(1)
	}

	httpClient := httpx.New(cfg.Quote.RequestTimeout)

	options := []quote.FetcherOption{
		quote.WithBaseURL(cfg.Quote.BaseURL),
		quote.WithHTTPClient(httpClient),
		quote.WithPolicy(cfg.Policy()),
		quote.WithLogger(log),
	}
	if cfg.Quote.APIKey != "" {
		options = append(options, quote.WithHeader(http.Header{
			"Authorization": []string{"Bearer " + cfg.Quote.APIKey},
		}))
	}
	fetcher, err := quote.NewFetcher(options...)
	if err != nil {
		log.Error("fetcher", slog.Any("error", err))
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/quote", handleQuote(log, fetcher))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", slog.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", slog.Any("error", err))
	}
	log.Info("stopped")
}

// handleQuote serves GET /quote?symbol=S, mapping the fetch error
// taxonomy onto HTTP statuses: RateLimit -> 429, Critical -> 502.
func handleQuote(log *slog.Logger, fetcher *quote.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "bad_request", Error: "symbol query parameter is required"})
			return
		}

		price, err := fetcher.Fetch(r.Context(), symbol)
		if err != nil {
			var rateErr *quote.RateLimitError
			if errors.As(err, &rateErr) {
				log.Warn("rate limited", slog.String("symbol", symbol))
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Kind: "rate_limit", Error: err.Error()})
				return
			}
			log.Error("fetch failed", slog.String("symbol", symbol), slog.Any("error", err))
			writeJSON(w, http.StatusBadGateway, errorResponse{Kind: "critical", Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, quoteResponse{Symbol: symbol, Price: price})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
