package listing

import (
	"go.uber.org/fx"

	"github.com/nyumbahq/nyumba/internal/listing/repository"
	"github.com/nyumbahq/nyumba/internal/listing/service"
)

var Module = fx.Module("listing",
	fx.Provide(
		repository.New,
		service.New,
	),
)
