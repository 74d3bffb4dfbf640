// Package adapters wires provider adapters into a lookup registry.
package adapters

import (
	"strings"

	"go.uber.org/fx"

	"github.com/nyumbahq/nyumba/internal/payment/domain"
)

type RegistryParams struct {
	fx.In

	Adapters []domain.IAdapter `group:"payment.adapters"`
}

type registry struct {
	byName map[string]domain.IAdapter
}

func NewRegistry(p RegistryParams) domain.IRegistry {
	byName := make(map[string]domain.IAdapter, len(p.Adapters))
	for _, a := range p.Adapters {
		byName[a.Provider()] = a
	}
	return &registry{byName: byName}
}

func (r *registry) Adapter(provider string) (domain.IAdapter, error) {
	a, ok := r.byName[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return a, nil
}
