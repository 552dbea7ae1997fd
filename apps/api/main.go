package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldesk/internal/auth"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/smallbiznis/rentaldesk/internal/contact"
	"github.com/smallbiznis/rentaldesk/internal/customer"
	"github.com/smallbiznis/rentaldesk/internal/migration"
	"github.com/smallbiznis/rentaldesk/internal/observability"
	"github.com/smallbiznis/rentaldesk/internal/providers"
	"github.com/smallbiznis/rentaldesk/internal/quote"
	"github.com/smallbiznis/rentaldesk/internal/ratelimit"
	"github.com/smallbiznis/rentaldesk/internal/server"
	"github.com/smallbiznis/rentaldesk/pkg/db"
	"go.uber.org/fx"
)

// The HTTP surface alone. Pair it with apps/scheduler when the sweep runs
// as its own deployment.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		ratelimit.Module,
		providers.Module,

		customer.Module,
		quote.Module,
		contact.Module,
		auth.Module,
		migration.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
