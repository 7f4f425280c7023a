package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"info":     slog.LevelInfo,
		"WARN":     slog.LevelWarn,
		"error":    slog.LevelError,
		"":         slog.LevelInfo,
		"nonsense": slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, levelFromString(in), "input %q", in)
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	t.Parallel()

	log := New(Options{Env: "dev", Level: "debug", App: "quotefetch"})
	require.NotNil(t, log)
	log.Debug("smoke")
}

func TestNew_WithFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "quotefetch.log")
	log := New(Options{Env: "prod", Level: "info", File: file, App: "quotefetch"})
	require.NotNil(t, log)
	log.Info("smoke", slog.String("symbol", "AAPL"))
}
