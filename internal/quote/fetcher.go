package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=quote_test -destination=mock_http_client_test.go -source=fetcher.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Policy is the fixed retry policy applied to every fetch.
type Policy struct {
	// MaxAttempts bounds the number of HTTP round trips per Fetch call.
	MaxAttempts int
	// BackoffBase is the wait before the second attempt; the wait doubles
	// with every further attempt.
	BackoffBase time.Duration
	// RequestTimeout bounds each individual round trip.
	RequestTimeout time.Duration
}

// DefaultPolicy returns the production policy: 3 attempts, 500ms base
// backoff, 5s per-request timeout.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		BackoffBase:    500 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
	}
}

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Fetcher fetches a single numeric quote per call and classifies every
// failure into either *RateLimitError or *CriticalError. It holds no
// mutable state, so concurrent Fetch calls are fully independent.
type Fetcher struct {
	// baseURL is the endpoint prefix; the symbol is appended as a path segment.
	baseURL string
	// httpClient performs the round trips.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// policy is the retry policy, immutable after construction.
	policy Policy
	// log records retryable failures; it never alters control flow.
	log *slog.Logger
	// sleep waits between retryable attempts. Overridable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// FetcherOption is a configuration option for the Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseURL sets the endpoint prefix quotes are fetched from.
func WithBaseURL(baseURL string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client used for round trips.
func WithHTTPClient(httpClient HTTPClient) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) FetcherOption {
	return func(f *Fetcher) {
		for key, values := range header {
			for _, value := range values {
				f.header.Add(key, value)
			}
		}
	}
}

// WithPolicy overrides the default retry policy.
func WithPolicy(policy Policy) FetcherOption {
	return func(f *Fetcher) {
		f.policy = policy
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(log *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// WithSleepFunc overrides the wait between retryable attempts. Tests use
// it to record backoff durations without sleeping.
func WithSleepFunc(sleep func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *Fetcher) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

// NewFetcher creates a new quote Fetcher.
func NewFetcher(options ...FetcherOption) (*Fetcher, error) {
	var fetcher = &Fetcher{
		httpClient: http.DefaultClient,
		header:     http.Header{},
		policy:     DefaultPolicy(),
		log:        slog.Default(),
		sleep:      sleepContext,
	}
	for _, option := range options {
		option(fetcher)
	}
	if fetcher.baseURL == "" {
		return nil, errors.New("quote: base URL is required")
	}
	if fetcher.policy.MaxAttempts < 1 {
		return nil, fmt.Errorf("quote: max attempts must be at least 1, got %d", fetcher.policy.MaxAttempts)
	}
	return fetcher, nil
}

// Fetch drives up to Policy.MaxAttempts round trips for symbol and
// returns a strictly positive finite price, or exactly one of
// *RateLimitError / *CriticalError. Retryable failures (timeout,
// connection fault, 5xx) are slept through with exponential backoff;
// everything else terminates the loop immediately.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (float64, error) {
	var last outcome
	for i := 0; i < f.policy.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return 0, criticalWrap("fetch canceled", err)
		}

		out := f.attempt(ctx, symbol)
		switch out.kind {
		case outcomeSuccess:
			return out.price, nil
		case outcomeTerminal:
			return 0, out.err
		}

		last = out
		if i == f.policy.MaxAttempts-1 {
			break
		}
		wait := f.policy.BackoffBase << uint(i)
		f.log.Warn("retrying quote fetch",
			slog.String("symbol", symbol),
			slog.Int("attempt", i+1),
			slog.String("reason", out.reason.String()),
			slog.Duration("wait", wait))
		if err := f.sleep(ctx, wait); err != nil {
			return 0, criticalWrap("fetch canceled during backoff", err)
		}
	}
	return 0, last.exhausted(f.policy.MaxAttempts)
}

// attempt performs one HTTP round trip and classifies its result.
func (f *Fetcher) attempt(ctx context.Context, symbol string) outcome {
	reqCtx, cancel := context.WithTimeout(ctx, f.policy.RequestTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s", f.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return terminal(criticalWrap("creating request", err))
	}
	for key, values := range f.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	res, err := f.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode >= http.StatusInternalServerError:
		return outcome{kind: outcomeRetryable, reason: reasonServerError, lastStatus: res.StatusCode}

	case res.StatusCode == http.StatusTooManyRequests:
		return terminal(rateLimited(res.Header.Get("Retry-After")))

	case res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices:
		return terminal(critical(fmt.Sprintf("unexpected status code: %d", res.StatusCode)))
	}

	return parsePrice(res.Body)
}

// classifyTransport sorts a round-trip error into the retryable timeout
// and network buckets; anything unrecognized is terminal.
func classifyTransport(err error) outcome {
	if errors.Is(err, context.Canceled) {
		return terminal(criticalWrap("request canceled", err))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return outcome{kind: outcomeRetryable, reason: reasonTimeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return outcome{kind: outcomeRetryable, reason: reasonTimeout}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		var opErr *net.OpError
		var dnsErr *net.DNSError
		if errors.As(urlErr.Err, &opErr) || errors.As(urlErr.Err, &dnsErr) {
			return outcome{kind: outcomeRetryable, reason: reasonNetwork}
		}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return outcome{kind: outcomeRetryable, reason: reasonNetwork}
	}
	return terminal(criticalWrap("performing request", err))
}

// rateLimited builds the terminal 429 error. The policy never honors the
// Retry-After hint; it only reports it.
func rateLimited(retryAfter string) *RateLimitError {
	if retryAfter == "" {
		return &RateLimitError{Msg: "Fail-fast on rate limit (429): Retry-After header missing"}
	}
	return &RateLimitError{Msg: fmt.Sprintf("Fail-fast on rate limit (429): server sent Retry-After=%s", retryAfter)}
}

// parsePrice decodes a success body and validates the price field.
func parsePrice(body io.Reader) outcome {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return terminal(criticalWrap("reading response body", err))
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return terminal(criticalWrap("decoding quote response", err))
	}
	value, ok := payload["price"]
	if !ok || value == nil {
		return terminal(critical(fmt.Sprintf("bad data: missing numeric price in payload %s", compactPayload(raw))))
	}
	price, ok := value.(float64)
	if !ok {
		return terminal(critical(fmt.Sprintf("bad data: price is not numeric in payload %s", compactPayload(raw))))
	}
	if price <= 0 || math.IsInf(price, 0) || math.IsNaN(price) {
		return terminal(critical(fmt.Sprintf("bad data: non-positive price %v", price)))
	}
	return outcome{kind: outcomeSuccess, price: price}
}

// compactPayload trims a response body for inclusion in error messages.
func compactPayload(raw []byte) string {
	const max = 256
	s := strings.TrimSpace(string(raw))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// sleepContext blocks for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
