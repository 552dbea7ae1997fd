package observability

import (
	"os"
	"strings"

	"github.com/smallbiznis/rentaldesk/internal/config"
)

// debugEnvironments run gin in debug mode and log without sampling.
var debugEnvironments = map[string]struct{}{
	"dev":         {},
	"development": {},
	"local":       {},
	"test":        {},
}

// Config is the logging and tracing identity of the process.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string
}

// LoadConfig layers LOG_* and deployment overrides on top of the app config.
func LoadConfig(cfg config.Config) Config {
	c := Config{
		ServiceName: strings.TrimSpace(cfg.AppName),
		Environment: lookup("DEPLOYMENT_ENV", cfg.Environment),
		Version:     lookup("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:    strings.ToLower(lookup("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(lookup("LOG_FORMAT", "json")),
	}
	if c.ServiceName == "" {
		c.ServiceName = "rentaldesk"
	}
	return c
}

func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	_, ok := debugEnvironments[strings.ToLower(c.Environment)]
	return ok
}

func lookup(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(fallback)
}
