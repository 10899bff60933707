// Package config loads all pipeline settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/arifsolmaz/exodigest/internal/pipeline"
)

type Config struct {
	// Fetcher settings
	ArxivCategory string
	MaxPapers     int
	FeedURL       string // override for tests; default derived from category
	QueryURL      string // Atom API fallback override

	// AI settings
	GeminiAPIKey  string
	GeminiModel   string
	MaxAIRequests int // per-run budget across summary+hook calls (0 = unlimited)

	// Posting settings
	PageURL         string
	WindowStartHour int // UTC hour the daily posting window opens
	WindowEndHour   int // UTC hour the window closes

	// Twitter
	TwitterBearerToken string
	TwitterAPIURL      string

	// Bluesky
	BlueskyHandle   string
	BlueskyPassword string
	BlueskyPDSURL   string

	// Telegram
	TelegramToken  string
	TelegramChatID string
	TelegramAPIURL string

	// Storage paths
	DataDir         string
	KeywordsPath    string // optional classifier dictionary override (YAML)
	ArchiveDays     int    // index retention horizon
	TurkishNewsMax  int    // cap on stored news items
	TurkishPerDay   int    // papers converted to Turkish news per run
	RSSItemLimit    int

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		ArxivCategory:   "astro-ph.EP",
		MaxPapers:       25,
		GeminiModel:     "gemini-1.5-flash",
		MaxAIRequests:   60,
		PageURL:         "https://arifsolmaz.github.io/arxiv",
		WindowStartHour: 14,
		WindowEndHour:   23,
		DataDir:         "data",
		ArchiveDays:     90,
		TurkishNewsMax:  50,
		TurkishPerDay:   5,
		RSSItemLimit:    50,
		RequestTimeout:  30 * time.Second,
		RetryAttempts:   3,
		RetryDelay:      2 * time.Second,
	}

	// Load from environment
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.TwitterBearerToken = os.Getenv("TWITTER_BEARER_TOKEN")
	cfg.BlueskyHandle = os.Getenv("BLUESKY_HANDLE")
	cfg.BlueskyPassword = os.Getenv("BLUESKY_PASSWORD")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	cfg.ArxivCategory = getEnvOrDefault("ARXIV_CATEGORY", cfg.ArxivCategory)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.PageURL = getEnvOrDefault("PAGE_URL", cfg.PageURL)
	cfg.DataDir = getEnvOrDefault("DATA_DIR", cfg.DataDir)
	cfg.KeywordsPath = os.Getenv("KEYWORDS_PATH")

	cfg.MaxPapers = getEnvIntOrDefault("MAX_PAPERS", cfg.MaxPapers)
	cfg.MaxAIRequests = getEnvIntOrDefault("MAX_AI_REQUESTS", cfg.MaxAIRequests)
	cfg.WindowStartHour = getEnvIntOrDefault("POST_WINDOW_START_HOUR", cfg.WindowStartHour)
	cfg.WindowEndHour = getEnvIntOrDefault("POST_WINDOW_END_HOUR", cfg.WindowEndHour)
	cfg.ArchiveDays = getEnvIntOrDefault("ARCHIVE_RETENTION_DAYS", cfg.ArchiveDays)
	cfg.TurkishPerDay = getEnvIntOrDefault("TURKISH_NEWS_PER_DAY", cfg.TurkishPerDay)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryAttempts = val
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks run-level invariants only. Credentials are checked by the
// feature that needs them so one missing token does not block the others.
func (c *Config) Validate() error {
	if c.ArxivCategory == "" {
		return fmt.Errorf("ARXIV_CATEGORY must not be empty")
	}
	if c.WindowEndHour <= c.WindowStartHour {
		return fmt.Errorf("posting window must end after it starts (got %d..%d)", c.WindowStartHour, c.WindowEndHour)
	}
	return nil
}

// RequireGemini returns an error when the AI key is absent.
// Summary generation cannot proceed without it.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for summary generation: %w", pipeline.ErrConfigMissing)
	}
	return nil
}

// RequireTwitter checks the Twitter credentials.
func (c *Config) RequireTwitter() error {
	if c.TwitterBearerToken == "" {
		return fmt.Errorf("TWITTER_BEARER_TOKEN is not set: %w", pipeline.ErrConfigMissing)
	}
	return nil
}

// RequireBluesky checks the Bluesky credentials.
func (c *Config) RequireBluesky() error {
	if c.BlueskyHandle == "" || c.BlueskyPassword == "" {
		return fmt.Errorf("BLUESKY_HANDLE and BLUESKY_PASSWORD are not set: %w", pipeline.ErrConfigMissing)
	}
	return nil
}

// RequireTelegram checks the Telegram credentials.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" || c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID are not set: %w", pipeline.ErrConfigMissing)
	}
	return nil
}
