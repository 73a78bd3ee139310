// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes bot settings such as
// the Telegram transport, completion API credentials, billing limits, database
// location, admin sessions, HTTP server timeouts, and observability.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseMode selects how outbound text is formatted by Telegram.
type ParseMode string

const (
	ParseModeNone     ParseMode = "NONE"
	ParseModeMarkdown ParseMode = "MARKDOWN"
	ParseModeHTML     ParseMode = "HTML"
)

// ParseModeFromEnv maps a raw value to a ParseMode; unknown values become NONE.
func ParseModeFromEnv(raw string) ParseMode {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HTML":
		return ParseModeHTML
	case "MARKDOWN":
		return ParseModeMarkdown
	default:
		return ParseModeNone
	}
}

// Transport selects how updates reach the bot.
type Transport string

const (
	TransportWebhook     Transport = "WEBHOOK"
	TransportLongPolling Transport = "LONG_POLLING"
)

// TransportFromEnv maps a raw value to a Transport; unknown values become WEBHOOK.
func TransportFromEnv(raw string) Transport {
	if Transport(strings.ToUpper(strings.TrimSpace(raw))) == TransportLongPolling {
		return TransportLongPolling
	}
	return TransportWebhook
}

const (
	defaultOffsetFileProd = "/var/lib/chatbotchef/update_offset.dat"
	defaultOffsetFileDev  = "./.run/update_offset.dat"
	defaultSQLitePathProd = "/data/chatbotchef.db"
	defaultSQLitePathDev  = "./.run/dev.db"
)

// TelegramConfig holds Bot API credentials and transport settings.
type TelegramConfig struct {
	BotToken        string
	WebhookURL      string
	SecretToken     string
	APIEndpoint     string // format string with two %s verbs: token, method
	AdminIDs        []int64
	ParseMode       ParseMode
	Transport       Transport
	PollInterval    time.Duration
	PollTimeoutSec  int
	OffsetFile      string
	WelcomeImageURL string
}

// IsAdmin reports whether id is in the configured admin set.
func (t TelegramConfig) IsAdmin(id int64) bool {
	for _, a := range t.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}

// OpenAIConfig holds chat-completion credentials.
type OpenAIConfig struct {
	APIKey           string
	Model            string
	Organization     string
	Project          string
	BaseURL          string
	AutoLocalization bool
}

// DatabaseConfig selects the gorm dialect and DSN.
type DatabaseConfig struct {
	Driver string // sqlite|postgres|mysql
	URL    string
}

// BillingConfig holds quota and premium settings.
type BillingConfig struct {
	FreeTotalLimit      int
	PremiumPrice        string // kept as text, rendered verbatim in messages
	PremiumDurationDays int
	ReminderDays        []int // sorted descending
}

// HelpConfig feeds the placeholders of the help message.
type HelpConfig struct {
	WebsiteURL       string
	PrivacyPolicyURL string
	PublicOfferURL   string
	SupportEmail     string
}

// SessionConfig defines the admin-session store.
type SessionConfig struct {
	TTL      time.Duration
	RedisURL string // empty selects the in-memory store
}

// HousekeepingConfig drives periodic maintenance.
type HousekeepingConfig struct {
	Enabled        bool
	Schedule       string        // cron spec, minute resolution
	DedupRetention time.Duration // processed-update markers older than this are purged
}

// QueueConfig sizes the webhook work queue.
type QueueConfig struct {
	Size    int
	Workers int
}

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool
	AppEnv         string // DEV|PROD

	// Bot
	Telegram      TelegramConfig
	OpenAI        OpenAIConfig
	Database      DatabaseConfig
	Billing       BillingConfig
	Help          HelpConfig
	DefaultLocale string
	HistoryLimit  int

	Session      SessionConfig
	Housekeeping HousekeepingConfig
	Queue        QueueConfig

	// Rate limiting for internal endpoints
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// IsDev reports whether development defaults apply.
func (c Config) IsDev() bool {
	return c.AppEnv == "DEV" || c.Telegram.Transport == TransportLongPolling
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	transport := TransportFromEnv(getenv("TELEGRAM_TRANSPORT", ""))
	appEnv := strings.ToUpper(getenv("APP_ENV", ""))
	dev := transport == TransportLongPolling || appEnv == "DEV"

	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		AppEnv:         appEnv,

		Telegram: TelegramConfig{
			BotToken:        getenv("TELEGRAM_BOT_TOKEN", ""),
			WebhookURL:      getenv("TELEGRAM_WEBHOOK_URL", ""),
			SecretToken:     getenv("TELEGRAM_SECRET_TOKEN", ""),
			APIEndpoint:     getenv("TELEGRAM_API_ENDPOINT", "https://api.telegram.org/bot%s/%s"),
			AdminIDs:        splitIDs(getenv("ADMIN_IDS", "")),
			ParseMode:       ParseModeFromEnv(getenv("PARSE_MODE", "")),
			Transport:       transport,
			PollInterval:    time.Duration(getint("TELEGRAM_POLL_INTERVAL_MS", 800)) * time.Millisecond,
			PollTimeoutSec:  getint("TELEGRAM_POLL_TIMEOUT_SEC", 40),
			OffsetFile:      getenv("TELEGRAM_OFFSET_FILE", pick(dev, defaultOffsetFileDev, defaultOffsetFileProd)),
			WelcomeImageURL: getenv("WELCOME_IMAGE_URL", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:           getenv("OPENAI_API_KEY", ""),
			Model:            getenv("OPENAI_MODEL", ""),
			Organization:     getenv("OPENAI_ORG", ""),
			Project:          getenv("OPENAI_PROJECT", ""),
			BaseURL:          strings.TrimRight(getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
			AutoLocalization: getbool("AUTO_LOCALIZATION", false),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			URL:    getenv("DB_URL", pick(dev, defaultSQLitePathDev, defaultSQLitePathProd)),
		},
		Billing: BillingConfig{
			FreeTotalLimit:      getint("FREE_TOTAL_MSG_LIMIT", 10),
			PremiumPrice:        getenv("PREMIUM_PRICE_EUR", "6.99"),
			PremiumDurationDays: getint("PREMIUM_DURATION_DAYS", 30),
			ReminderDays:        splitDays(getenv("REMINDER_DAYS_BEFORE", "3")),
		},
		Help: HelpConfig{
			WebsiteURL:       getenv("WEBSITE_URL", ""),
			PrivacyPolicyURL: getenv("PRIVACY_POLICY_URL", ""),
			PublicOfferURL:   getenv("PUBLIC_OFFER_URL", ""),
			SupportEmail:     getenv("SUPPORT_EMAIL", ""),
		},
		DefaultLocale: strings.ToLower(getenv("DEFAULT_LOCALE", "en")),
		HistoryLimit:  getint("HISTORY_LIMIT", 20),

		Session: SessionConfig{
			TTL:      getdur("ADMIN_SESSION_TTL", 10*time.Minute),
			RedisURL: getenv("REDIS_URL", ""),
		},
		Housekeeping: HousekeepingConfig{
			Enabled:        getbool("HOUSEKEEPING_ENABLED", true),
			Schedule:       getenv("HOUSEKEEPING_CRON", "0 9 * * *"),
			DedupRetention: getdur("DEDUP_RETENTION", 72*time.Hour),
		},
		Queue: QueueConfig{
			Size:    getint("QUEUE_SIZE", 256),
			Workers: getint("QUEUE_WORKERS", 4),
		},

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "chatbotchef"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.Database.Driver == "sqlite3" {
		cfg.Database.Driver = "sqlite"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres, mysql")
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return cfg, errors.New("DB_URL must not be empty")
	}
	if cfg.Telegram.PollInterval < 0 {
		return cfg, errors.New("TELEGRAM_POLL_INTERVAL_MS must be >= 0")
	}
	if cfg.Telegram.PollTimeoutSec < 0 {
		return cfg, errors.New("TELEGRAM_POLL_TIMEOUT_SEC must be >= 0")
	}
	if cfg.Billing.FreeTotalLimit < 0 {
		return cfg, errors.New("FREE_TOTAL_MSG_LIMIT must be >= 0")
	}
	if cfg.Billing.PremiumDurationDays <= 0 {
		return cfg, errors.New("PREMIUM_DURATION_DAYS must be > 0")
	}
	if cfg.HistoryLimit <= 0 {
		return cfg, errors.New("HISTORY_LIMIT must be > 0")
	}
	if cfg.Session.TTL <= 0 {
		return cfg, errors.New("ADMIN_SESSION_TTL must be > 0")
	}
	if cfg.Housekeeping.DedupRetention <= 0 {
		return cfg, errors.New("DEDUP_RETENTION must be > 0")
	}
	if cfg.Queue.Size < 1 || cfg.Queue.Workers < 1 {
		return cfg, errors.New("QUEUE_SIZE and QUEUE_WORKERS must be >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// EnsureDirectories creates the parent directories of the offset file and,
// for sqlite, of the database file. Failures are ignored; the later open
// reports a precise error.
func (c Config) EnsureDirectories() {
	ensureParent(c.Telegram.OffsetFile)
	if c.Database.Driver == "sqlite" {
		path := strings.TrimPrefix(c.Database.URL, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if path != "" && !strings.EqualFold(path, ":memory:") {
			ensureParent(path)
		}
	}
}

func ensureParent(path string) {
	if path == "" {
		return
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// splitIDs parses a CSV of numeric ids, skipping garbage and duplicates.
func splitIDs(s string) []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, p := range splitCSV(s) {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// splitDays parses reminder lead days and sorts them descending.
func splitDays(s string) []int {
	var out []int
	for _, p := range splitCSV(s) {
		if d, err := strconv.Atoi(p); err == nil {
			out = append(out, d)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
