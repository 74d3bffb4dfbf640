package cooperative

import (
	"go.uber.org/fx"

	"github.com/nyumbahq/nyumba/internal/cooperative/repository"
	"github.com/nyumbahq/nyumba/internal/cooperative/service"
)

var Module = fx.Module("cooperative",
	fx.Provide(
		repository.NewCooperativeRepository,
		repository.NewContributionRepository,
		service.New,
	),
)
