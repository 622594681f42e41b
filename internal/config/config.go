// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server, database,
// matching, payment, classifier and transport settings for the society bot.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings for the admin API.
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
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-society-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// BotConfig identifies the bot on the chat transport.
type BotConfig struct {
	Username       string  // BOT_USERNAME, used to build deep links
	AdminUserID    int64   // BOT_ADMIN_ID, 0 disables admin actions
	AllowedChatIDs []int64 // ALLOWED_CHAT_IDS, empty means every chat
}

// ListingConfig controls listing retention and matching windows.
type ListingConfig struct {
	ExpiryDays      int    // LISTING_EXPIRY_DAYS
	MaxResults      int    // MAX_RESULTS, sample size for hook details
	CleanupSchedule string // CLEANUP_SCHEDULE (cron spec, 5 fields)
}

// TTL returns the listing lifetime as a duration.
func (l ListingConfig) TTL() time.Duration {
	return time.Duration(l.ExpiryDays) * 24 * time.Hour
}

// Tier is one priced bundle of additional leads.
type Tier struct {
	Code  string // "t1", "t2"
	Price int64  // rupees
	Leads int
	Tips  bool
}

// LeadsConfig controls the free preview and the paid tiers.
type LeadsConfig struct {
	FreeLeads int // FREE_LEADS_COUNT
	Tiers     []Tier
}

// Tier returns the tier with the given code.
func (l LeadsConfig) Tier(code string) (Tier, bool) {
	for _, t := range l.Tiers {
		if t.Code == code {
			return t, true
		}
	}
	return Tier{}, false
}

// PaymentConfig selects and configures the payment channel.
type PaymentConfig struct {
	Channel           string        // PAYMENT_CHANNEL: manual|razorpay
	RazorpayKeyID     string        // RAZORPAY_KEY_ID
	RazorpayKeySecret string        // RAZORPAY_KEY_SECRET
	WebhookSecret     string        // RAZORPAY_WEBHOOK_SECRET
	RazorpayBaseURL   string        // RAZORPAY_BASE_URL
	Timeout           time.Duration // PAYMENT_TIMEOUT
	UPIVPA            string        // UPI_VPA
	UPIPayeeName      string        // UPI_PAYEE_NAME
}

// ClassifierConfig configures the remote classification strategy.
type ClassifierConfig struct {
	APIKey      string        // ANTHROPIC_API_KEY, empty disables the remote strategy
	Model       string        // CLASSIFIER_MODEL
	Timeout     time.Duration // CLASSIFIER_TIMEOUT
	RPS         float64       // CLASSIFIER_RPS, remote calls per second
	CatalogPath string        // CATEGORY_CATALOG, optional YAML override
}

// AMQPConfig configures the outbound message publisher.
type AMQPConfig struct {
	URL        string // AMQP_URL, empty selects the log-only sender
	Exchange   string // AMQP_EXCHANGE
	RoutingKey string // AMQP_ROUTING_KEY
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Database
	DBDriver string // sqlite|postgres|mysql
	DBDSN    string // file path for sqlite, DSN otherwise

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// WebhookEventTTL is how long a processed provider event id is remembered.
	WebhookEventTTL time.Duration

	Bot        BotConfig
	Listings   ListingConfig
	Leads      LeadsConfig
	Payments   PaymentConfig
	Classifier ClassifierConfig
	AMQP       AMQPConfig

	// Observability
	OTEL OTELConfig
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
	allowed, err := splitInt64CSV(getenv("ALLOWED_CHAT_IDS", ""))
	if err != nil {
		return Config{}, errors.New("ALLOWED_CHAT_IDS must be a comma-separated list of integers")
	}

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
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Database
		DBDriver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:    getenv("DB_DSN", "society_bot.db"),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 20.0),
		RateBurst: getint("RATE_BURST", 40),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		WebhookEventTTL: getdur("WEBHOOK_EVENT_TTL", 72*time.Hour),

		Bot: BotConfig{
			Username:       strings.TrimPrefix(getenv("BOT_USERNAME", "societykakubot"), "@"),
			AdminUserID:    getint64("BOT_ADMIN_ID", 0),
			AllowedChatIDs: allowed,
		},
		Listings: ListingConfig{
			ExpiryDays:      getint("LISTING_EXPIRY_DAYS", 180),
			MaxResults:      getint("MAX_RESULTS", 10),
			CleanupSchedule: getenv("CLEANUP_SCHEDULE", "0 3 * * *"),
		},
		Leads: LeadsConfig{
			FreeLeads: getint("FREE_LEADS_COUNT", 2),
			Tiers: []Tier{
				{Code: "t1", Price: getint64("TIER1_PRICE", 59), Leads: getint("TIER1_LEADS", 5)},
				{Code: "t2", Price: getint64("TIER2_PRICE", 199), Leads: getint("TIER2_LEADS", 15), Tips: true},
			},
		},
		Payments: PaymentConfig{
			Channel:           strings.ToLower(getenv("PAYMENT_CHANNEL", "manual")),
			RazorpayKeyID:     getenv("RAZORPAY_KEY_ID", ""),
			RazorpayKeySecret: getenv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret:     getenv("RAZORPAY_WEBHOOK_SECRET", ""),
			RazorpayBaseURL:   strings.TrimRight(getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"), "/"),
			Timeout:           getdur("PAYMENT_TIMEOUT", 10*time.Second),
			UPIVPA:            getenv("UPI_VPA", ""),
			UPIPayeeName:      getenv("UPI_PAYEE_NAME", "Society Ka Bot"),
		},
		Classifier: ClassifierConfig{
			APIKey:      getenv("ANTHROPIC_API_KEY", ""),
			Model:       getenv("CLASSIFIER_MODEL", "claude-3-5-haiku-latest"),
			Timeout:     getdur("CLASSIFIER_TIMEOUT", 8*time.Second),
			RPS:         getfloat("CLASSIFIER_RPS", 2.0),
			CatalogPath: getenv("CATEGORY_CATALOG", ""),
		},
		AMQP: AMQPConfig{
			URL:        getenv("AMQP_URL", ""),
			Exchange:   getenv("AMQP_EXCHANGE", "societybot.outbound"),
			RoutingKey: getenv("AMQP_ROUTING_KEY", "chat.outbound"),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-society-bot"),
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
	switch cfg.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres, mysql")
	}
	if strings.TrimSpace(cfg.DBDSN) == "" {
		return cfg, errors.New("DB_DSN must not be empty")
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
	if cfg.WebhookEventTTL <= 0 {
		return cfg, errors.New("WEBHOOK_EVENT_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.Bot.Username) == "" {
		return cfg, errors.New("BOT_USERNAME must not be empty")
	}
	if cfg.Listings.ExpiryDays < 1 {
		return cfg, errors.New("LISTING_EXPIRY_DAYS must be >= 1")
	}
	if cfg.Listings.MaxResults < 1 {
		return cfg, errors.New("MAX_RESULTS must be >= 1")
	}
	if cfg.Leads.FreeLeads < 0 {
		return cfg, errors.New("FREE_LEADS_COUNT must be >= 0")
	}
	for _, t := range cfg.Leads.Tiers {
		if t.Price <= 0 || t.Leads <= 0 {
			return cfg, errors.New("TIER*_PRICE and TIER*_LEADS must be > 0")
		}
	}
	switch cfg.Payments.Channel {
	case "manual":
	case "razorpay":
		if cfg.Payments.RazorpayKeyID == "" || cfg.Payments.RazorpayKeySecret == "" {
			return cfg, errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required for PAYMENT_CHANNEL=razorpay")
		}
		if cfg.Payments.WebhookSecret == "" {
			return cfg, errors.New("RAZORPAY_WEBHOOK_SECRET is required for PAYMENT_CHANNEL=razorpay")
		}
	default:
		return cfg, errors.New("PAYMENT_CHANNEL must be one of: manual, razorpay")
	}
	if cfg.Payments.Timeout <= 0 {
		return cfg, errors.New("PAYMENT_TIMEOUT must be > 0")
	}
	if cfg.Classifier.Timeout <= 0 {
		return cfg, errors.New("CLASSIFIER_TIMEOUT must be > 0")
	}
	if cfg.Classifier.RPS < 0 {
		return cfg, errors.New("CLASSIFIER_RPS must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
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
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
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

// splitInt64CSV parses a comma-separated list of chat ids. Group ids on the
// transport are negative, so the sign is kept.
func splitInt64CSV(s string) ([]int64, error) {
	parts := splitCSV(s)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
