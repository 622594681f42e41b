package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	clearEnv(t)
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("API_BASE_PATH default expected '/api/v1', got %q", cfg.APIBasePath)
	}
}

// --- Load defaults ---

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBDSN != "society_bot.db" {
		t.Fatalf("db defaults unexpected: %q %q", cfg.DBDriver, cfg.DBDSN)
	}
	if cfg.Listings.ExpiryDays != 180 || cfg.Listings.TTL() != 180*24*time.Hour {
		t.Fatalf("listing ttl default unexpected: %+v", cfg.Listings)
	}
	if cfg.Listings.MaxResults != 10 || cfg.Listings.CleanupSchedule != "0 3 * * *" {
		t.Fatalf("listing defaults unexpected: %+v", cfg.Listings)
	}
	if cfg.Leads.FreeLeads != 2 {
		t.Fatalf("free leads default expected 2, got %d", cfg.Leads.FreeLeads)
	}
	t1, ok := cfg.Leads.Tier("t1")
	if !ok || t1.Price != 59 || t1.Leads != 5 || t1.Tips {
		t.Fatalf("tier t1 unexpected: %+v", t1)
	}
	t2, ok := cfg.Leads.Tier("t2")
	if !ok || t2.Price != 199 || t2.Leads != 15 || !t2.Tips {
		t.Fatalf("tier t2 unexpected: %+v", t2)
	}
	if _, ok := cfg.Leads.Tier("t9"); ok {
		t.Fatalf("unknown tier should not resolve")
	}
	if cfg.Payments.Channel != "manual" {
		t.Fatalf("payment channel default expected manual, got %q", cfg.Payments.Channel)
	}
	if cfg.Bot.Username != "societykakubot" || cfg.Bot.AdminUserID != 0 || cfg.Bot.AllowedChatIDs != nil {
		t.Fatalf("bot defaults unexpected: %+v", cfg.Bot)
	}
	if cfg.Classifier.APIKey != "" || cfg.Classifier.Timeout != 8*time.Second {
		t.Fatalf("classifier defaults unexpected: %+v", cfg.Classifier)
	}
	if cfg.AMQP.URL != "" || cfg.AMQP.Exchange != "societybot.outbound" {
		t.Fatalf("amqp defaults unexpected: %+v", cfg.AMQP)
	}
}

func TestLoad_DefaultsIgnoreCallerEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-shell")
	t.Setenv("PAYMENT_CHANNEL", "razorpay")
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Classifier.APIKey != "" || cfg.Payments.Channel != "manual" {
		t.Fatalf("caller env leaked: key=%q channel=%q", cfg.Classifier.APIKey, cfg.Payments.Channel)
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("API_BASE_PATH", "api/v2/")

	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://u:p@db:5432/bot")

	t.Setenv("RATE_RPS", "x")      // -> default 20
	t.Setenv("RATE_BURST", "nope") // -> default 40

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")

	t.Setenv("BOT_USERNAME", "@mybot")
	t.Setenv("BOT_ADMIN_ID", " 4242 ")
	t.Setenv("ALLOWED_CHAT_IDS", "-1001, -1002 ,")

	t.Setenv("LISTING_EXPIRY_DAYS", "30")
	t.Setenv("FREE_LEADS_COUNT", "3")
	t.Setenv("TIER1_PRICE", "49")
	t.Setenv("TIER2_LEADS", "20")

	t.Setenv("PAYMENT_CHANNEL", "RAZORPAY")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("RAZORPAY_BASE_URL", "http://rzp.local/v1/")

	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" || cfg.ReadTimeout != 2*time.Second || cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || cfg.APIBasePath != "/api/v2" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}
	if cfg.DBDriver != "postgres" || cfg.DBDSN != "postgres://u:p@db:5432/bot" {
		t.Fatalf("db unexpected: %q %q", cfg.DBDriver, cfg.DBDSN)
	}
	if cfg.RateRPS != 20.0 || cfg.RateBurst != 40 {
		t.Fatalf("rate limiting unexpected: %v %v", cfg.RateRPS, cfg.RateBurst)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Bot.Username != "mybot" || cfg.Bot.AdminUserID != 4242 {
		t.Fatalf("bot unexpected: %+v", cfg.Bot)
	}
	if !reflect.DeepEqual(cfg.Bot.AllowedChatIDs, []int64{-1001, -1002}) {
		t.Fatalf("allowed chats unexpected: %#v", cfg.Bot.AllowedChatIDs)
	}
	if cfg.Listings.TTL() != 30*24*time.Hour || cfg.Leads.FreeLeads != 3 {
		t.Fatalf("listing/leads unexpected: %+v %+v", cfg.Listings, cfg.Leads)
	}
	if t1, _ := cfg.Leads.Tier("t1"); t1.Price != 49 {
		t.Fatalf("tier1 price override failed: %+v", t1)
	}
	if t2, _ := cfg.Leads.Tier("t2"); t2.Leads != 20 {
		t.Fatalf("tier2 leads override failed: %+v", t2)
	}
	if cfg.Payments.Channel != "razorpay" || cfg.Payments.RazorpayBaseURL != "http://rzp.local/v1" {
		t.Fatalf("payments unexpected: %+v", cfg.Payments)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	clearEnv(t)
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"invalid LOG_LEVEL", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"empty PORT via spaces", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"non-positive timeouts", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"max header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}, "DB_DRIVER"},
		{"empty dsn", map[string]string{"DB_DSN": "   "}, "DB_DSN must not be empty"},
		{"rate rps negative", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"rate burst < 1", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"hsts negative", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"webhook ttl", map[string]string{"WEBHOOK_EVENT_TTL": "0s"}, "WEBHOOK_EVENT_TTL"},
		{"bad chat ids", map[string]string{"ALLOWED_CHAT_IDS": "12,abc"}, "ALLOWED_CHAT_IDS"},
		{"expiry days", map[string]string{"LISTING_EXPIRY_DAYS": "0"}, "LISTING_EXPIRY_DAYS"},
		{"max results", map[string]string{"MAX_RESULTS": "0"}, "MAX_RESULTS"},
		{"free leads", map[string]string{"FREE_LEADS_COUNT": "-1"}, "FREE_LEADS_COUNT"},
		{"tier price", map[string]string{"TIER1_PRICE": "0"}, "TIER*_PRICE"},
		{"unknown channel", map[string]string{"PAYMENT_CHANNEL": "paypal"}, "PAYMENT_CHANNEL"},
		{"razorpay keys", map[string]string{"PAYMENT_CHANNEL": "razorpay"}, "RAZORPAY_KEY_ID"},
		{"razorpay webhook secret", map[string]string{
			"PAYMENT_CHANNEL": "razorpay", "RAZORPAY_KEY_ID": "k", "RAZORPAY_KEY_SECRET": "s",
		}, "RAZORPAY_WEBHOOK_SECRET"},
		{"payment timeout", map[string]string{"PAYMENT_TIMEOUT": "0s"}, "PAYMENT_TIMEOUT"},
		{"classifier timeout", map[string]string{"CLASSIFIER_TIMEOUT": "0s"}, "CLASSIFIER_TIMEOUT"},
		{"classifier rps", map[string]string{"CLASSIFIER_RPS": "-2"}, "CLASSIFIER_RPS"},
		{"otel ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil || !containsErr(err, tc.want) {
				t.Fatalf("expected %s validation error, got: %v", tc.want, err)
			}
		})
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

func TestHelpers_numbers(t *testing.T) {
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}
	t.Setenv("I64_NEG", "-100123")
	if getint64("I64_NEG", 0) != -100123 {
		t.Fatalf("getint64 should keep the sign")
	}
	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	for _, v := range []string{"1", "true", " yes ", "on"} {
		t.Setenv("B_T", v)
		if !getbool("B_T", false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for _, v := range []string{"0", "FALSE", " no ", "off"} {
		t.Setenv("B_F", v)
		if getbool("B_F", true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
}

func TestHelpers_splitInt64CSV_and_normalizeBasePath(t *testing.T) {
	if out, err := splitInt64CSV(""); out != nil || err != nil {
		t.Fatalf("splitInt64CSV empty should return nil, nil")
	}
	got, err := splitInt64CSV(" -5, 7 ,")
	if err != nil || !reflect.DeepEqual(got, []int64{-5, 7}) {
		t.Fatalf("splitInt64CSV mismatch: %#v %v", got, err)
	}
	if normalizeBasePath("") != "/" || normalizeBasePath("v1") != "/v1" || normalizeBasePath("/v1/") != "/v1" {
		t.Fatalf("normalizeBasePath failed")
	}
}

// consumedEnv lists every variable Load reads.
var consumedEnv = []string{
	"ALLOWED_CHAT_IDS",
	"AMQP_EXCHANGE",
	"AMQP_ROUTING_KEY",
	"AMQP_URL",
	"ANTHROPIC_API_KEY",
	"API_BASE_PATH",
	"BOT_ADMIN_ID",
	"BOT_USERNAME",
	"CATEGORY_CATALOG",
	"CLASSIFIER_MODEL",
	"CLASSIFIER_RPS",
	"CLASSIFIER_TIMEOUT",
	"CLEANUP_SCHEDULE",
	"CORS_ALLOWED_ORIGINS",
	"DB_DRIVER",
	"DB_DSN",
	"ENABLE_HSTS",
	"FREE_LEADS_COUNT",
	"GIN_MODE",
	"HSTS_MAX_AGE",
	"IDLE_TIMEOUT",
	"LISTING_EXPIRY_DAYS",
	"LOG_LEVEL",
	"LOG_PRETTY",
	"MAX_HEADER_BYTES",
	"MAX_RESULTS",
	"OTEL_ENABLED",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_EXPORTER_OTLP_INSECURE",
	"OTEL_SERVICE_NAME",
	"OTEL_TRACES_SAMPLER_ARG",
	"PAYMENT_CHANNEL",
	"PAYMENT_TIMEOUT",
	"PORT",
	"RATE_BURST",
	"RATE_RPS",
	"RAZORPAY_BASE_URL",
	"RAZORPAY_KEY_ID",
	"RAZORPAY_KEY_SECRET",
	"RAZORPAY_WEBHOOK_SECRET",
	"READ_HEADER_TIMEOUT",
	"READ_TIMEOUT",
	"SWAGGER_ENABLED",
	"TIER1_LEADS",
	"TIER1_PRICE",
	"TIER2_LEADS",
	"TIER2_PRICE",
	"UPI_PAYEE_NAME",
	"UPI_VPA",
	"WEBHOOK_EVENT_TTL",
	"WRITE_TIMEOUT",
}

// clearEnv blanks every consumed variable for the test so defaults apply
// regardless of the caller's shell. Blank values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range consumedEnv {
		t.Setenv(k, "")
	}
}

// Ensure tests don't leak env to others.
func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Unsetenv("PAYMENT_CHANNEL")
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
