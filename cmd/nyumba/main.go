package main

import (
	"go.uber.org/fx"

	"github.com/nyumbahq/nyumba/internal/agent"
	"github.com/nyumbahq/nyumba/internal/clock"
	"github.com/nyumbahq/nyumba/internal/config"
	"github.com/nyumbahq/nyumba/internal/cooperative"
	"github.com/nyumbahq/nyumba/internal/listing"
	"github.com/nyumbahq/nyumba/internal/migration"
	"github.com/nyumbahq/nyumba/internal/observability"
	"github.com/nyumbahq/nyumba/internal/payment"
	"github.com/nyumbahq/nyumba/internal/providers/notify"
	"github.com/nyumbahq/nyumba/internal/ratelimit"
	"github.com/nyumbahq/nyumba/internal/scheduler"
	"github.com/nyumbahq/nyumba/internal/seed"
	"github.com/nyumbahq/nyumba/internal/server"
	"github.com/nyumbahq/nyumba/internal/subscription"
	"github.com/nyumbahq/nyumba/pkg/db"
	"github.com/nyumbahq/nyumba/pkg/idgen"
)

func main() {
	fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
		seed.Module,
		idgen.Module,
		clock.Module,
		notify.Module,
		ratelimit.Module,

		agent.Module,
		listing.Module,
		subscription.Module,
		cooperative.Module,
		payment.Module,

		scheduler.Module,
		server.Module,
	).Run()
}
