package observability

import (
	"github.com/smallbiznis/rentaldesk/internal/observability/logger"
	"github.com/smallbiznis/rentaldesk/internal/observability/metrics"
	"github.com/smallbiznis/rentaldesk/internal/observability/tracing"
	"github.com/smallbiznis/rentaldesk/pkg/telemetry"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		logger.New,
		metrics.Default,
	),
	fx.Invoke(tracing.Setup),
	telemetry.Module,
)

func provideLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.ServiceName,
		Environment:         cfg.Environment,
		Version:             cfg.Version,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		Debug:               cfg.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Debug(),
	}
}
