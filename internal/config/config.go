// Package config resolves runtime configuration from .env, process
// environment and the JSON files under config/.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the environment-level configuration shared by the CLI and the
// HTTP server.
type Config struct {
	Port string
	Mode string // "mock" or "production"

	GeminiAPIKey string
	XAIAPIKey    string
	XBearerToken string

	DatabaseURL string
	CSVPath     string
	ImageDir    string

	Object ObjectStoreConfig
}

// ObjectStoreConfig points generated images at an S3-compatible bucket.
// Disabled when no endpoint is set; images then land in ImageDir.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	mode := strings.ToLower(strings.TrimSpace(os.Getenv("MODE")))
	if mode == "" {
		mode = "mock"
	}

	return &Config{
		Port:         port,
		Mode:         mode,
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		XAIAPIKey:    strings.TrimSpace(os.Getenv("XAI_API_KEY")),
		XBearerToken: strings.TrimSpace(os.Getenv("TWITTER_BEARER_TOKEN")),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CSVPath:      firstNonEmpty(strings.TrimSpace(os.Getenv("CSV_PATH")), "output/results.csv"),
		ImageDir:     firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_DIR")), "output/images"),
		Object:       loadObjectStoreConfig(),
	}, nil
}

// Mock reports whether external services should be replaced with the
// deterministic offline versions.
func (c *Config) Mock() bool { return c.Mode != "production" }

func loadObjectStoreConfig() ObjectStoreConfig {
	return ObjectStoreConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("IMAGE_S3_ENDPOINT")),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_BUCKET")), "viral-post-images"),
		UseSSL:    parseBoolDefault(os.Getenv("IMAGE_S3_USE_SSL"), false),
	}
}

// Account is one benchmark account to collect from.
type Account struct {
	Username string `json:"username"`
	Category string `json:"category"`
}

type accountsFile struct {
	BenchmarkAccounts []Account `json:"benchmark_accounts"`
}

// LoadAccounts reads the benchmark account list.
func LoadAccounts(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f accountsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.BenchmarkAccounts, nil
}

// Settings are the per-run knobs from config/settings.json. JSON shape
// follows the historical file layout.
type Settings struct {
	Collection struct {
		PostsPerAccount   int `json:"tweets_per_account"`
		MaxAccountsPerRun int `json:"max_accounts_per_run"`
	} `json:"collection"`
	Filtering struct {
		EngagementThreshold struct {
			MinLikes   int `json:"min_likes"`
			MinReposts int `json:"min_retweets"`
		} `json:"engagement_threshold"`
	} `json:"filtering"`
	Processing struct {
		PostsToAnalyze int  `json:"tweets_to_analyze"`
		PostsToRewrite int  `json:"tweets_to_rewrite"`
		GenerateImages bool `json:"generate_images"`
	} `json:"processing"`
	RateLimiting struct {
		DelayBetweenAccounts float64 `json:"delay_between_accounts"`
		DelayBetweenItems    float64 `json:"delay_between_items"`
	} `json:"rate_limiting"`
}

// DefaultSettings mirrors the shipped settings.json.
func DefaultSettings() Settings {
	var s Settings
	s.Collection.PostsPerAccount = 100
	s.Collection.MaxAccountsPerRun = 5
	s.Filtering.EngagementThreshold.MinLikes = 500
	s.Filtering.EngagementThreshold.MinReposts = 50
	s.Processing.PostsToAnalyze = 10
	s.Processing.PostsToRewrite = 5
	s.RateLimiting.DelayBetweenAccounts = 1
	s.RateLimiting.DelayBetweenItems = 0.1
	return s
}

// LoadSettings reads settings.json, filling absent values with defaults.
// A missing file is not an error; the defaults apply.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), err
	}
	fillSettingsDefaults(&s)
	return s, nil
}

func fillSettingsDefaults(s *Settings) {
	d := DefaultSettings()
	if s.Collection.PostsPerAccount <= 0 {
		s.Collection.PostsPerAccount = d.Collection.PostsPerAccount
	}
	if s.Collection.MaxAccountsPerRun <= 0 {
		s.Collection.MaxAccountsPerRun = d.Collection.MaxAccountsPerRun
	}
	if s.Filtering.EngagementThreshold.MinLikes <= 0 {
		s.Filtering.EngagementThreshold.MinLikes = d.Filtering.EngagementThreshold.MinLikes
	}
	if s.Filtering.EngagementThreshold.MinReposts <= 0 {
		s.Filtering.EngagementThreshold.MinReposts = d.Filtering.EngagementThreshold.MinReposts
	}
	if s.Processing.PostsToAnalyze <= 0 {
		s.Processing.PostsToAnalyze = d.Processing.PostsToAnalyze
	}
	if s.Processing.PostsToRewrite <= 0 {
		s.Processing.PostsToRewrite = d.Processing.PostsToRewrite
	}
	if s.RateLimiting.DelayBetweenAccounts <= 0 {
		s.RateLimiting.DelayBetweenAccounts = d.RateLimiting.DelayBetweenAccounts
	}
	if s.RateLimiting.DelayBetweenItems <= 0 {
		s.RateLimiting.DelayBetweenItems = d.RateLimiting.DelayBetweenItems
	}
}

// AccountDelay and ItemDelay convert the JSON second counts to durations.
func (s Settings) AccountDelay() time.Duration {
	return time.Duration(s.RateLimiting.DelayBetweenAccounts * float64(time.Second))
}

func (s Settings) ItemDelay() time.Duration {
	return time.Duration(s.RateLimiting.DelayBetweenItems * float64(time.Second))
}

func parseBoolDefault(raw string, def bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
