package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/smallbiznis/rentaldesk/internal/customer"
	"github.com/smallbiznis/rentaldesk/internal/observability"
	"github.com/smallbiznis/rentaldesk/internal/ratelimit"
	"github.com/smallbiznis/rentaldesk/internal/scheduler"
	"github.com/smallbiznis/rentaldesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		// Redis lock keeps replicas from sweeping twice.
		ratelimit.Module,

		customer.Module,

		// No server module!
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
