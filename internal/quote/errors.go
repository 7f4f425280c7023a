package quote

import (
	"errors"
	"fmt"
)

// ErrFetch is the common root of every error returned by Fetch. Callers
// that do not care which kind they got can errors.Is against it.
var ErrFetch = errors.New("quote: fetch failed")

// RateLimitError is returned when the endpoint answers 429. The fetch
// fails fast and surfaces the server's Retry-After hint to the caller
// instead of sleeping through it; 429 is never retried.
type RateLimitError struct {
	Msg string
}

func (e *RateLimitError) Error() string { return e.Msg }

func (e *RateLimitError) Is(target error) bool { return target == ErrFetch }

// CriticalError is returned for every terminal condition that is not a
// rate limit: exhausted retries, unexpected statuses, malformed payloads
// and transport faults the policy does not retry.
type CriticalError struct {
	Msg   string
	cause error
}

func (e *CriticalError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

func (e *CriticalError) Unwrap() error { return e.cause }

func (e *CriticalError) Is(target error) bool { return target == ErrFetch }

func critical(msg string) *CriticalError { return &CriticalError{Msg: msg} }

func criticalWrap(msg string, cause error) *CriticalError {
	return &CriticalError{Msg: msg, cause: cause}
}
