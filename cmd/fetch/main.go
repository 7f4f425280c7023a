package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"quotefetch/internal/config"
	"quotefetch/internal/httpx"
	"quotefetch/internal/logger"
	"quotefetch/internal/quote"
)

type result struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func main() {
	var symbolsCSV string
	var baseURL string
	var apiKey string

	flag.StringVar(&symbolsCSV, "symbols", getenv("SYMBOLS", "AAPL"), "comma-separated symbols to fetch")
	flag.StringVar(&baseURL, "base-url", "", "quote endpoint prefix (overrides QUOTE_BASE_URL)")
	flag.StringVar(&apiKey, "api-key", "", "API key (overrides QUOTE_API_KEY)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.Quote.BaseURL = baseURL
	}
	if apiKey != "" {
		cfg.Quote.APIKey = apiKey
	}

	log := logger.New(logger.Options{Env: cfg.Env, Level: cfg.Log.Level, File: cfg.Log.File, App: "fetch"})

	if cfg.Quote.BaseURL == "" {
		log.Error("no endpoint configured; set QUOTE_BASE_URL or -base-url")
		os.Exit(1)
	}
	symbols := splitCSV(symbolsCSV)
	if len(symbols) == 0 {
		log.Error("no symbols provided")
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

	ctx := context.Background()
	results := make([]result, 0, len(symbols))
	failed := 0
	for _, symbol := range symbols {
		start := time.Now()
		price, err := fetcher.Fetch(ctx, symbol)
		if err != nil {
			failed++
			var rateErr *quote.RateLimitError
			if errors.As(err, &rateErr) {
				log.Error("rate limited", slog.String("symbol", symbol), slog.Any("error", err))
			} else {
				log.Error("fetch failed", slog.String("symbol", symbol), slog.Any("error", err))
			}
			continue
		}
		log.Info("fetched", slog.String("symbol", symbol), slog.Float64("price", price), slog.Duration("dur", time.Since(start)))
		results = append(results, result{Symbol: symbol, Price: price})
	}

	b, _ := json.MarshalIndent(struct {
		Quotes []result `json:"quotes"`
	}{Quotes: results}, "", "  ")
	fmt.Println(string(b))

	if failed > 0 {
		os.Exit(1)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
