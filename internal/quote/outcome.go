package quote

import "fmt"

// outcomeKind tags the result of a single attempt.
type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeRetryable
	outcomeTerminal
)

// retryReason labels why an attempt is eligible for another round trip.
type retryReason int

const (
	reasonTimeout retryReason = iota
	reasonNetwork
	reasonServerError
)

func (r retryReason) String() string {
	switch r {
	case reasonTimeout:
		return "timeout"
	case reasonNetwork:
		return "network failure"
	case reasonServerError:
		return "server error"
	}
	return "unknown"
}

// outcome is the tagged result of one HTTP round trip. The attempt loop
// matches on kind: retryable outcomes are absorbed (logged, slept,
// retried) and only a success or a terminal outcome leaves Fetch.
type outcome struct {
	kind  outcomeKind
	price float64
	// reason is set for retryable outcomes; lastStatus carries the HTTP
	// status that caused them, 0 for transport-level failures.
	reason     retryReason
	lastStatus int
	// err is the terminal error, set when kind == outcomeTerminal.
	err error
}

func terminal(err error) outcome { return outcome{kind: outcomeTerminal, err: err} }

// exhausted builds the terminal error for a retryable failure once no
// attempts remain.
func (o outcome) exhausted(attempts int) error {
	switch o.reason {
	case reasonTimeout:
		return critical(fmt.Sprintf("request timed out after %d attempts", attempts))
	case reasonNetwork:
		return critical(fmt.Sprintf("network failure after %d attempts", attempts))
	case reasonServerError:
		return critical(fmt.Sprintf("server error after %d attempts (last status %d)", attempts, o.lastStatus))
	}
	// Every retryable outcome carries one of the reasons above.
	return critical(fmt.Sprintf("exhausted %d attempts without a definite failure", attempts))
}
