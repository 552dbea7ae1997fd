package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewNotificationConfigHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	CORSAllowedOrigins []string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Auth      AuthConfig
	Email     EmailConfig
	Retention RetentionConfig
	RateLimit RateLimitConfig

	NodeID int64
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type EmailConfig struct {
	// Provider is one of smtp, sendgrid or log. Empty selects smtp when
	// SMTP_HOST is set, otherwise log.
	Provider       string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
	SendGridAPIKey string
}

// RateLimitConfig throttles the public submission endpoints per client IP.
// It only takes effect when redis is configured.
type RateLimitConfig struct {
	Enabled         bool
	SubmissionRate  float64 // tokens per second
	SubmissionBurst int
}

type RetentionConfig struct {
	QuotationCustomerTTL time.Duration
	SweepInterval        time.Duration
	StartupDelay         time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:            getenv("APP_SERVICE", "rentaldesk"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        getenv("ENVIRONMENT", "development"),
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: ParseList(getenv("CORS_ALLOWED_ORIGINS", "")),
		OTLPEndpoint:       strings.TrimSpace(getenv("OTLP_ENDPOINT", "")),
		DBType:             getenv("DATABASE_TYPE", "postgres"),
		DBHost:             getenv("DATABASE_HOST", "localhost"),
		DBPort:             getenv("DATABASE_PORT", "5432"),
		DBName:             getenv("DATABASE_NAME", "rentaldesk"),
		DBUser:             getenv("DATABASE_USER", "postgres"),
		DBPassword:         getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:          getenv("DATABASE_SSLMODE", "disable"),
		DBPath:             getenv("DATABASE_PATH", "rentaldesk.db"),
		DBMaxIdleConn:      getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:      getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime:  getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime:  getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		RedisAddr:          strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            getenvInt("REDIS_DB", 0),
		Auth: AuthConfig{
			JWTSecret:     strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
			TokenTTL:      getenvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
			AdminEmail:    strings.ToLower(strings.TrimSpace(getenv("ADMIN_EMAIL", ""))),
			AdminPassword: getenv("ADMIN_PASSWORD", ""),
			AdminName:     getenv("ADMIN_NAME", "Administrator"),
		},
		Email: EmailConfig{
			Provider:       strings.ToLower(strings.TrimSpace(getenv("EMAIL_PROVIDER", ""))),
			SMTPHost:       strings.TrimSpace(getenv("SMTP_HOST", "")),
			SMTPPort:       getenvInt("SMTP_PORT", 587),
			SMTPUsername:   getenv("SMTP_USERNAME", ""),
			SMTPPassword:   getenv("SMTP_PASSWORD", ""),
			SMTPFrom:       getenv("SMTP_FROM", "no-reply@rentaldesk.local"),
			SendGridAPIKey: strings.TrimSpace(getenv("SENDGRID_API_KEY", "")),
		},
		Retention: RetentionConfig{
			QuotationCustomerTTL: getenvDuration("CUSTOMER_QUOTATION_TTL", 30*24*time.Hour),
			SweepInterval:        getenvDuration("CUSTOMER_SWEEP_INTERVAL", 24*time.Hour),
			StartupDelay:         getenvDuration("CUSTOMER_SWEEP_STARTUP_DELAY", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getenvBool("RATE_LIMIT_ENABLED", true),
			SubmissionRate:  getenvFloat("RATE_LIMIT_SUBMISSION_RATE", 0.1),
			SubmissionBurst: getenvInt("RATE_LIMIT_SUBMISSION_BURST", 5),
		},
		NodeID: int64(getenvInt("NODE_ID", 1)),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// ParseList splits a comma-separated value, dropping blanks.
func ParseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
