package payment

import (
	"github.com/recuerdos/tienda/internal/payment/mercadopago"
	"github.com/recuerdos/tienda/internal/payment/repository"
	"github.com/recuerdos/tienda/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	mercadopago.Module,
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
