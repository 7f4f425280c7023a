package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"quotefetch/internal/quote"
)

// Config holds process configuration for the quotefetch binaries. The
// retry policy values default to the production constants; overriding
// them is meant for tests and staging, not for tuning.
type Config struct {
	Env   string `validate:"required,oneof=dev prod"`
	Quote struct {
		BaseURL        string `validate:"omitempty,url"`
		APIKey         string
		MaxAttempts    int           `validate:"min=1"`
		BackoffBase    time.Duration `validate:"min=0"`
		RequestTimeout time.Duration `validate:"required"`
	}
	HTTP struct {
		Addr string `validate:"required"`
	}
	Log struct {
		Level string `validate:"required,oneof=debug info warn error"`
		File  string
	}
}

var validate = validator.New()

// Load reads configuration from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	c.Env = getenv("ENV", "prod")
	c.Quote.BaseURL = os.Getenv("QUOTE_BASE_URL")
	c.Quote.APIKey = os.Getenv("QUOTE_API_KEY")
	c.Quote.MaxAttempts = getenvInt("QUOTE_MAX_ATTEMPTS", 3)
	c.Quote.BackoffBase = time.Duration(getenvInt("QUOTE_BACKOFF_BASE_MS", 500)) * time.Millisecond
	c.Quote.RequestTimeout = time.Duration(getenvInt("QUOTE_REQUEST_TIMEOUT_SEC", 5)) * time.Second
	c.HTTP.Addr = getenv("HTTP_ADDR", ":8080")
	c.Log.Level = strings.ToLower(getenv("LOG_LEVEL", "info"))
	c.Log.File = os.Getenv("LOG_FILE")

	if err := validate.Struct(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Policy converts the configured retry values into a quote.Policy.
func (c Config) Policy() quote.Policy {
	return quote.Policy{
		MaxAttempts:    c.Quote.MaxAttempts,
		BackoffBase:    c.Quote.BackoffBase,
		RequestTimeout: c.Quote.RequestTimeout,
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err != nil {
		return def
	}
	return x
}
