package email

import (
	"github.com/smallbiznis/rentaldesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

// NewFromConfig picks the transport named by EMAIL_PROVIDER. With no
// explicit choice, SMTP wins when a host is configured.
func NewFromConfig(cfg config.Config, notify *config.NotificationConfigHolder, log *zap.Logger) Provider {
	fromName := notify.Get().FromName
	provider := cfg.Email.Provider
	if provider == "" {
		provider = "log"
		if cfg.Email.SMTPHost != "" {
			provider = "smtp"
		}
	}

	switch provider {
	case "sendgrid":
		if cfg.Email.SendGridAPIKey != "" {
			return NewSendGrid(SendGridConfig{
				APIKey:   cfg.Email.SendGridAPIKey,
				From:     cfg.Email.SMTPFrom,
				FromName: fromName,
			})
		}
		log.Warn("sendgrid selected without SENDGRID_API_KEY, falling back to log provider")
	case "smtp":
		if cfg.Email.SMTPHost != "" {
			return NewSMTP(SMTPConfig{
				Host:     cfg.Email.SMTPHost,
				Port:     cfg.Email.SMTPPort,
				Username: cfg.Email.SMTPUsername,
				Password: cfg.Email.SMTPPassword,
				From:     cfg.Email.SMTPFrom,
				FromName: fromName,
			})
		}
		log.Warn("smtp selected without SMTP_HOST, falling back to log provider")
	case "log":
	default:
		log.Warn("unknown email provider, falling back to log provider", zap.String("provider", provider))
	}
	return NewLogProvider(log)
}
