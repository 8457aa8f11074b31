package migration

import (
	"fmt"

	cataldomain "github.com/recuerdos/tienda/internal/catalog/domain"
	"github.com/recuerdos/tienda/internal/config"
	inventorydomain "github.com/recuerdos/tienda/internal/inventory/domain"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
	paymentdomain "github.com/recuerdos/tienda/internal/payment/domain"
	saledomain "github.com/recuerdos/tienda/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module applies the schema before anything else touches the database.
// Postgres runs the embedded SQL migrations; other dialects (sqlite in
// tests, mysql) fall back to AutoMigrate.
var Module = fx.Module("migration",
	fx.Invoke(Run),
)

func Run(cfg config.Config, gdb *gorm.DB, log *zap.Logger) error {
	if cfg.DBType == "postgres" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return fmt.Errorf("unwrap database handle: %w", err)
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	}

	if err := AutoMigrate(gdb); err != nil {
		return err
	}
	log.Info("schema auto-migrated", zap.String("dialect", cfg.DBType))
	return nil
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&cataldomain.Product{},
		&cataldomain.ProductSku{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.Shipment{},
		&orderdomain.Invoice{},
		&saledomain.Sale{},
		&paymentdomain.WebhookEvent{},
		&paymentdomain.ReconcileFailure{},
		&inventorydomain.StockDebit{},
	)
}
