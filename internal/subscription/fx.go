package subscription

import (
	"go.uber.org/fx"

	"github.com/nyumbahq/nyumba/internal/subscription/repository"
	"github.com/nyumbahq/nyumba/internal/subscription/service"
)

var Module = fx.Module("subscription",
	fx.Provide(
		repository.New,
		service.New,
	),
)
