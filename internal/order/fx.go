package order

import (
	"github.com/recuerdos/tienda/internal/order/repository"
	"github.com/recuerdos/tienda/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
