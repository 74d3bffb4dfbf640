package agent

import (
	"go.uber.org/fx"

	"github.com/nyumbahq/nyumba/internal/agent/repository"
	"github.com/nyumbahq/nyumba/internal/agent/service"
)

var Module = fx.Module("agent",
	fx.Provide(
		repository.New,
		service.New,
	),
)
