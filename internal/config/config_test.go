package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.Port == "" || cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected config from MustLoad: %+v", cfg)
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")

	// Telegram
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_TRANSPORT", "long_polling")
	t.Setenv("PARSE_MODE", "html")
	t.Setenv("ADMIN_IDS", " 42, x, 7 ,42 ")
	t.Setenv("TELEGRAM_POLL_INTERVAL_MS", "250")
	t.Setenv("TELEGRAM_POLL_TIMEOUT_SEC", "5")

	// Billing
	t.Setenv("FREE_TOTAL_MSG_LIMIT", "3")
	t.Setenv("PREMIUM_PRICE_EUR", "4.50")
	t.Setenv("REMINDER_DAYS_BEFORE", "1,7, 3")

	// Database
	t.Setenv("DB_DRIVER", "SQLITE3")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}

	tg := cfg.Telegram
	if tg.Transport != TransportLongPolling || tg.ParseMode != ParseModeHTML {
		t.Fatalf("telegram modes unexpected: %+v", tg)
	}
	if !reflect.DeepEqual(tg.AdminIDs, []int64{42, 7}) {
		t.Fatalf("admin ids unexpected: %#v", tg.AdminIDs)
	}
	if !tg.IsAdmin(7) || tg.IsAdmin(8) {
		t.Fatalf("IsAdmin unexpected")
	}
	if tg.PollInterval != 250*time.Millisecond || tg.PollTimeoutSec != 5 {
		t.Fatalf("poll settings unexpected: %+v", tg)
	}
	// long polling implies dev defaults
	if !cfg.IsDev() || tg.OffsetFile != defaultOffsetFileDev || cfg.Database.URL != defaultSQLitePathDev {
		t.Fatalf("dev defaults unexpected: offset=%q db=%q", tg.OffsetFile, cfg.Database.URL)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("driver normalization unexpected: %q", cfg.Database.Driver)
	}

	b := cfg.Billing
	if b.FreeTotalLimit != 3 || b.PremiumPrice != "4.50" || b.PremiumDurationDays != 30 {
		t.Fatalf("billing unexpected: %+v", b)
	}
	if !reflect.DeepEqual(b.ReminderDays, []int{7, 3, 1}) {
		t.Fatalf("reminder days unexpected: %#v", b.ReminderDays)
	}

	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_ProductionDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.IsDev() {
		t.Fatalf("expected production defaults")
	}
	if cfg.Telegram.Transport != TransportWebhook || cfg.Telegram.ParseMode != ParseModeNone {
		t.Fatalf("telegram defaults unexpected: %+v", cfg.Telegram)
	}
	if cfg.Telegram.OffsetFile != defaultOffsetFileProd || cfg.Database.URL != defaultSQLitePathProd {
		t.Fatalf("prod paths unexpected: %+v", cfg)
	}
	if cfg.Session.TTL != 10*time.Minute || cfg.Housekeeping.DedupRetention != 72*time.Hour {
		t.Fatalf("session/housekeeping defaults unexpected: %+v %+v", cfg.Session, cfg.Housekeeping)
	}
	if cfg.HistoryLimit != 20 || cfg.DefaultLocale != "en" {
		t.Fatalf("history/locale defaults unexpected: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Billing.ReminderDays, []int{3}) {
		t.Fatalf("reminder default unexpected: %#v", cfg.Billing.ReminderDays)
	}
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("openai base url unexpected: %q", cfg.OpenAI.BaseURL)
	}
}

func TestLoad_AppEnvDevSelectsDevPaths(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AppEnv != "DEV" || !cfg.IsDev() || cfg.Telegram.Transport != TransportWebhook {
		t.Fatalf("dev env unexpected: %+v", cfg)
	}
	if cfg.Telegram.OffsetFile != defaultOffsetFileDev {
		t.Fatalf("dev offset file unexpected: %q", cfg.Telegram.OffsetFile)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name, key, val, want string
	}{
		{"invalid LOG_LEVEL", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"empty PORT via spaces", "PORT", "   ", "PORT must not be empty"},
		{"non-positive timeouts", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"max header bytes <= 0", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"unknown driver", "DB_DRIVER", "oracle", "DB_DRIVER"},
		{"blank DB_URL", "DB_URL", "  ", "DB_URL must not be empty"},
		{"negative poll interval", "TELEGRAM_POLL_INTERVAL_MS", "-1", "TELEGRAM_POLL_INTERVAL_MS"},
		{"negative poll timeout", "TELEGRAM_POLL_TIMEOUT_SEC", "-5", "TELEGRAM_POLL_TIMEOUT_SEC"},
		{"negative free limit", "FREE_TOTAL_MSG_LIMIT", "-1", "FREE_TOTAL_MSG_LIMIT"},
		{"zero premium duration", "PREMIUM_DURATION_DAYS", "0", "PREMIUM_DURATION_DAYS"},
		{"zero history limit", "HISTORY_LIMIT", "0", "HISTORY_LIMIT"},
		{"zero session ttl", "ADMIN_SESSION_TTL", "0s", "ADMIN_SESSION_TTL"},
		{"zero dedup retention", "DEDUP_RETENTION", "0s", "DEDUP_RETENTION"},
		{"zero queue workers", "QUEUE_WORKERS", "0", "QUEUE_SIZE and QUEUE_WORKERS"},
		{"rate rps negative", "RATE_RPS", "-1", "RATE_RPS"},
		{"rate burst < 1", "RATE_BURST", "0", "RATE_BURST"},
		{"hsts max age negative", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"otel sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); !containsErr(err, tc.want) {
				t.Fatalf("expected %q validation error, got: %v", tc.want, err)
			}
		})
	}
}

func TestEnsureDirectories_CreatesParents(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Telegram: TelegramConfig{OffsetFile: filepath.Join(dir, "a", "offset.dat")},
		Database: DatabaseConfig{Driver: "sqlite", URL: "file:" + filepath.Join(dir, "b", "bot.db") + "?_pragma=busy_timeout(5000)"},
	}
	cfg.EnsureDirectories()
	for _, sub := range []string{"a", "b"} {
		if st, err := os.Stat(filepath.Join(dir, sub)); err != nil || !st.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", sub, err)
		}
	}
}

// --- dotenv ---

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CBC_DOTENV_A=file\nCBC_DOTENV_B=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CBC_DOTENV_A", "env")
	t.Setenv("CBC_DOTENV_B", "")
	os.Unsetenv("CBC_DOTENV_B")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("CBC_DOTENV_A"); got != "env" {
		t.Fatalf("existing var overridden: %q", got)
	}
	if got := os.Getenv("CBC_DOTENV_B"); got != "file" {
		t.Fatalf("dotenv var not loaded: %q", got)
	}
}

func TestLoadDotEnv_SkippedInProduction(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CBC_DOTENV_PROD=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_ENV", "prod")
	t.Setenv("CBC_DOTENV_PROD", "")
	os.Unsetenv("CBC_DOTENV_PROD")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if v, ok := os.LookupEnv("CBC_DOTENV_PROD"); ok {
		t.Fatalf("dotenv should be ignored in PROD, got %q", v)
	}
}

// --- helpers ---

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}

	t.Setenv("I_VALID", " 42 ")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}

	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		t.Setenv("B_T", v)
		if !getbool("B_T", false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for _, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		t.Setenv("B_F", v)
		if getbool("B_F", true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool default behavior unexpected")
	}
}

func TestHelpers_splitCSV_IDs_Days(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV mismatch: %#v", got)
	}
	if got := splitIDs("1,,abc,2,1"); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Fatalf("splitIDs mismatch: %#v", got)
	}
	if got := splitDays("2,x,10,5"); !reflect.DeepEqual(got, []int{10, 5, 2}) {
		t.Fatalf("splitDays mismatch: %#v", got)
	}
}

func TestParseModeAndTransportFromEnv(t *testing.T) {
	if ParseModeFromEnv(" markdown ") != ParseModeMarkdown || ParseModeFromEnv("bogus") != ParseModeNone {
		t.Fatalf("ParseModeFromEnv unexpected")
	}
	if TransportFromEnv("LONG_POLLING") != TransportLongPolling || TransportFromEnv("") != TransportWebhook {
		t.Fatalf("TransportFromEnv unexpected")
	}
}

// Ensure tests don't leak env to others.
func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "APP_ENV", "TELEGRAM_TRANSPORT", "DB_URL", "DB_DRIVER", "LOG_LEVEL"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
