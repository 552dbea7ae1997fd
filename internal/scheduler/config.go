package scheduler

import (
	"time"

	"github.com/smallbiznis/rentaldesk/internal/config"
)

const (
	JobSweepCustomers = "sweep_customers"

	sweepLockKey = "rentaldesk:sweep:customers"
)

// Config controls when scheduled jobs run.
type Config struct {
	RunInterval  time.Duration
	StartupDelay time.Duration
	JobTimeout   time.Duration
	// EnabledJobs empty means every job runs.
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:  24 * time.Hour,
		StartupDelay: 10 * time.Second,
		JobTimeout:   5 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval:  cfg.Retention.SweepInterval,
		StartupDelay: cfg.Retention.StartupDelay,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.StartupDelay < 0 {
		c.StartupDelay = defaults.StartupDelay
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

// lockTTL keeps a crashed holder from blocking the next tick.
func (c Config) lockTTL() time.Duration {
	return c.RunInterval / 2
}
