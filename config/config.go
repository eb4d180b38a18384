package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Source    SourceConfig
	Output    OutputConfig
	Selectors SelectorConfig
	Engine    EngineConfig
	Browser   BrowserConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// SourceConfig names the pages that are fetched.
type SourceConfig struct {
	// ProductsURL is the new-products page.
	ProductsURL string // default: https://www.family.co.jp/goods/newgoods.html

	// CampaignURL is the campaign listing page (server latest-info only).
	CampaignURL string // default: https://www.family.co.jp/campaign.html
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	// Path is the JSON file written by the pipeline. Overwritten on each run.
	Path string // default: "family_products.json"

	// SaveTextPath is the file written by POST /api/v1/save-text.
	SaveTextPath string // default: "latest-info.txt"
}

// SelectorConfig holds the CSS selectors for product extraction.
type SelectorConfig struct {
	Container     string // default: ".ly-mod-infoset"
	Name          string // default: ".ly-mod-infoset-name"
	Price         string // default: ".ly-mod-infoset-price"
	Region        string // default: ".ly-mod-infoset-area"
	DefaultRegion string // default: "全国"
}

// EngineConfig selects and tunes the fetch engine.
type EngineConfig struct {
	// Name is "http" (plain GET) or "rod" (headless Chromium).
	Name string // default: "http"

	// FetchTimeout bounds a single fetch. Zero means no deadline.
	FetchTimeout time.Duration // default: 0

	// TLSFingerprint dials HTTPS with a Chrome ClientHello (utls).
	TLSFingerprint bool // default: false
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Stealth injects go-rod/stealth evasions before navigation.
	Stealth bool // default: true

	// AcceptLanguage is sent as an extra header on rendered fetches.
	AcceptLanguage string // default: "ja,en;q=0.8"
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting of inbound API calls.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// CacheConfig controls the latest-info response cache.
type CacheConfig struct {
	// TTL is how long a fetched response is served before refetching.
	TTL time.Duration // default: 10m

	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 16
}

// WebhookConfig controls delivery of generated products to a remote endpoint.
type WebhookConfig struct {
	// URL is the endpoint; empty disables delivery.
	URL string

	// Secret signs the payload with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
// With no variables set the result reproduces the plain one-shot pipeline.
func Load() *Config {
	return &Config{
		Source: SourceConfig{
			ProductsURL: envOr("NEWGOODS_URL", "https://www.family.co.jp/goods/newgoods.html"),
			CampaignURL: envOr("NEWGOODS_CAMPAIGN_URL", "https://www.family.co.jp/campaign.html"),
		},
		Output: OutputConfig{
			Path:         envOr("NEWGOODS_OUTPUT", "family_products.json"),
			SaveTextPath: envOr("NEWGOODS_SAVE_TEXT_PATH", "latest-info.txt"),
		},
		Selectors: SelectorConfig{
			Container:     envOr("NEWGOODS_SEL_CONTAINER", ".ly-mod-infoset"),
			Name:          envOr("NEWGOODS_SEL_NAME", ".ly-mod-infoset-name"),
			Price:         envOr("NEWGOODS_SEL_PRICE", ".ly-mod-infoset-price"),
			Region:        envOr("NEWGOODS_SEL_REGION", ".ly-mod-infoset-area"),
			DefaultRegion: envOr("NEWGOODS_DEFAULT_REGION", "全国"),
		},
		Engine: EngineConfig{
			Name:           envOr("NEWGOODS_ENGINE", "http"),
			FetchTimeout:   envDurationOr("NEWGOODS_FETCH_TIMEOUT", 0),
			TLSFingerprint: envBoolOr("NEWGOODS_TLS_FINGERPRINT", false),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("NEWGOODS_HEADLESS", true),
			NoSandbox:      envBoolOr("NEWGOODS_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("NEWGOODS_BROWSER_BIN"),
			Stealth:        envBoolOr("NEWGOODS_STEALTH", true),
			AcceptLanguage: envOr("NEWGOODS_ACCEPT_LANGUAGE", "ja,en;q=0.8"),
		},
		Server: ServerConfig{
			Host: envOr("NEWGOODS_HOST", "0.0.0.0"),
			Port: envIntOr("NEWGOODS_PORT", 8080),
			Mode: envOr("NEWGOODS_MODE", "release"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("NEWGOODS_AUTH_ENABLED", false),
			APIKeys: envSliceOr("NEWGOODS_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("NEWGOODS_RATE_RPS", 5.0),
			Burst:             envIntOr("NEWGOODS_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			TTL:        envDurationOr("NEWGOODS_CACHE_TTL", 10*time.Minute),
			MaxEntries: envIntOr("NEWGOODS_CACHE_MAX_ENTRIES", 16),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("NEWGOODS_WEBHOOK_URL"),
			Secret: os.Getenv("NEWGOODS_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("NEWGOODS_LOG_LEVEL", "info"),
			Format: envOr("NEWGOODS_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
