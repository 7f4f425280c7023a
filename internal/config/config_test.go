package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"quotefetch/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "prod", c.Env)
	require.Equal(t, ":8080", c.HTTP.Addr)
	require.Equal(t, "info", c.Log.Level)

	policy := c.Policy()
	require.Equal(t, 3, policy.MaxAttempts)
	require.Equal(t, 500*time.Millisecond, policy.BackoffBase)
	require.Equal(t, 5*time.Second, policy.RequestTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("QUOTE_BASE_URL", "https://quotes.internal/api/v1/price")
	t.Setenv("QUOTE_MAX_ATTEMPTS", "5")
	t.Setenv("QUOTE_BACKOFF_BASE_MS", "250")
	t.Setenv("QUOTE_REQUEST_TIMEOUT_SEC", "10")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "dev", c.Env)
	require.Equal(t, "https://quotes.internal/api/v1/price", c.Quote.BaseURL)
	require.Equal(t, "debug", c.Log.Level)

	policy := c.Policy()
	require.Equal(t, 5, policy.MaxAttempts)
	require.Equal(t, 250*time.Millisecond, policy.BackoffBase)
	require.Equal(t, 10*time.Second, policy.RequestTimeout)
}

func TestLoad_RejectsInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "staging")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_RejectsBadBaseURL(t *testing.T) {
	t.Setenv("QUOTE_BASE_URL", "not a url")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_RejectsZeroAttempts(t *testing.T) {
	t.Setenv("QUOTE_MAX_ATTEMPTS", "0")

	_, err := config.Load()
	require.Error(t, err)
}
