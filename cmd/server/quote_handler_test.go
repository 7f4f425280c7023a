package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"quotefetch/internal/quote"
)

// stubClient serves canned responses per symbol path.
type stubClient struct {
	responses map[string]*http.Response
}

func (s stubClient) Do(req *http.Request) (*http.Response, error) {
	if res, ok := s.responses[req.URL.Path]; ok {
		return res, nil
	}
	return &http.Response{StatusCode: http.StatusNotFound, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func newHandler(t *testing.T, client quote.HTTPClient) http.HandlerFunc {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher, err := quote.NewFetcher(
		quote.WithBaseURL("http://upstream"),
		quote.WithHTTPClient(client),
		quote.WithLogger(log),
	)
	require.NoError(t, err)
	return handleQuote(log, fetcher)
}

func TestHandleQuote_Success(t *testing.T) {
	client := stubClient{responses: map[string]*http.Response{
		"/AAPL": {StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(`{"price": 175.5}`))},
	}}
	handler := newHandler(t, client)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/quote?symbol=AAPL", nil)
	handler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"price":175.5`)
}

func TestHandleQuote_MissingSymbol(t *testing.T) {
	handler := newHandler(t, stubClient{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/quote", nil)
	handler(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleQuote_RateLimit(t *testing.T) {
	res := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}
	res.Header.Set("Retry-After", "5")
	client := stubClient{responses: map[string]*http.Response{"/AAPL": res}}
	handler := newHandler(t, client)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/quote?symbol=AAPL", nil)
	handler(rr, req)

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Contains(t, rr.Body.String(), "rate_limit")
	require.Contains(t, rr.Body.String(), "Fail-fast")
}

func TestHandleQuote_CriticalMapsToBadGateway(t *testing.T) {
	client := stubClient{responses: map[string]*http.Response{
		"/AAPL": {StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(`{"price": -1}`))},
	}}
	handler := newHandler(t, client)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/quote?symbol=AAPL", nil)
	handler(rr, req)

	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.Contains(t, rr.Body.String(), "critical")
}
