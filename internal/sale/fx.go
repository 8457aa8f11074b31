package sale

import (
	"github.com/recuerdos/tienda/internal/sale/repository"
	"github.com/recuerdos/tienda/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
