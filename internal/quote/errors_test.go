package quote_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"quotefetch/internal/quote"
)

func TestRateLimitError(t *testing.T) {
	t.Parallel()

	err := &quote.RateLimitError{Msg: "Fail-fast on rate limit (429): server sent Retry-After=5"}
	require.Equal(t, "Fail-fast on rate limit (429): server sent Retry-After=5", err.Error())
	require.ErrorIs(t, err, quote.ErrFetch)
}

func TestCriticalError(t *testing.T) {
	t.Parallel()

	err := &quote.CriticalError{Msg: "bad data: non-positive price -1"}
	require.Equal(t, "bad data: non-positive price -1", err.Error())
	require.ErrorIs(t, err, quote.ErrFetch)
	require.Nil(t, errors.Unwrap(err))
}
