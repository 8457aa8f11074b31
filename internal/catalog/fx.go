package catalog

import (
	"github.com/recuerdos/tienda/internal/catalog/repository"
	"github.com/recuerdos/tienda/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
