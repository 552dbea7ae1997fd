package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// NotificationConfig controls who receives workflow emails and how they are
// addressed. It is hot-reloaded from notifications.yml.
type NotificationConfig struct {
	NotifyAdmins    bool     `mapstructure:"notifyAdmins"`
	AdminRecipients []string `mapstructure:"adminRecipients"`
	FromName        string   `mapstructure:"fromName"`
	Currency        string   `mapstructure:"currency"`
	BusinessName    string   `mapstructure:"businessName"`
	BusinessEmail   string   `mapstructure:"businessEmail"`
	BusinessPhone   string   `mapstructure:"businessPhone"`
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		NotifyAdmins:    getenvBool("NOTIFY_ADMINS", true),
		AdminRecipients: ParseList(getenv("ADMIN_RECIPIENTS", "")),
		FromName:        getenv("EMAIL_FROM_NAME", "Rentaldesk"),
		Currency:        getenv("CURRENCY", "ZAR"),
		BusinessName:    getenv("BUSINESS_NAME", "Rentaldesk Events"),
		BusinessEmail:   getenv("BUSINESS_EMAIL", ""),
		BusinessPhone:   getenv("BUSINESS_PHONE", ""),
	}
}

type NotificationConfigHolder struct {
	current atomic.Value // holds NotificationConfig
}

// NewStaticNotificationConfigHolder returns a holder that never reloads.
func NewStaticNotificationConfigHolder(cfg NotificationConfig) *NotificationConfigHolder {
	holder := &NotificationConfigHolder{}
	holder.current.Store(normalizeNotificationConfig(cfg))
	return holder
}

func NewNotificationConfigHolder() (*NotificationConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("notifications")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/rentaldesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RENTALDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultNotificationConfig()
	v.SetDefault("notifications.notifyAdmins", defaults.NotifyAdmins)
	v.SetDefault("notifications.adminRecipients", defaults.AdminRecipients)
	v.SetDefault("notifications.fromName", defaults.FromName)
	v.SetDefault("notifications.currency", defaults.Currency)
	v.SetDefault("notifications.businessName", defaults.BusinessName)
	v.SetDefault("notifications.businessEmail", defaults.BusinessEmail)
	v.SetDefault("notifications.businessPhone", defaults.BusinessPhone)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg NotificationConfig
	if err := v.UnmarshalKey("notifications", &cfg); err != nil {
		return nil, err
	}
	if err := validateNotificationConfig(cfg); err != nil {
		return nil, err
	}

	holder := &NotificationConfigHolder{}
	holder.current.Store(normalizeNotificationConfig(cfg))

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated NotificationConfig
			if err := v.UnmarshalKey("notifications", &updated); err != nil {
				log.Printf("[notification-config] reload failed: %v", err)
				return
			}
			if err := validateNotificationConfig(updated); err != nil {
				log.Printf("[notification-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(normalizeNotificationConfig(updated))
			log.Printf("[notification-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *NotificationConfigHolder) Get() NotificationConfig {
	if h == nil {
		return normalizeNotificationConfig(DefaultNotificationConfig())
	}
	cfg, ok := h.current.Load().(NotificationConfig)
	if !ok {
		return normalizeNotificationConfig(DefaultNotificationConfig())
	}
	return cfg
}

func normalizeNotificationConfig(cfg NotificationConfig) NotificationConfig {
	recipients := make([]string, 0, len(cfg.AdminRecipients))
	for _, item := range cfg.AdminRecipients {
		// a single yml/env entry may itself be comma-separated
		for _, addr := range ParseList(item) {
			recipients = append(recipients, strings.ToLower(addr))
		}
	}
	cfg.AdminRecipients = recipients
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	return cfg
}

func validateNotificationConfig(cfg NotificationConfig) error {
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("notifications.currency cannot be empty")
	}
	for _, item := range cfg.AdminRecipients {
		for _, addr := range ParseList(item) {
			if !strings.Contains(addr, "@") {
				return errors.New("notifications.adminRecipients contains an invalid address")
			}
		}
	}
	return nil
}
