package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	FindByExternalReference(ctx context.Context, db *gorm.DB, ref string) (*Order, error)
	FindByPreferenceID(ctx context.Context, db *gorm.DB, preferenceID string) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Order, error)
	UpdateReconciliation(ctx context.Context, db *gorm.DB, id int64, status Status, paymentID string, payload datatypes.JSON, approvedAt *time.Time, now time.Time) error
	SetPreferenceID(ctx context.Context, db *gorm.DB, id int64, preferenceID string, now time.Time) error
	UpsertShipment(ctx context.Context, db *gorm.DB, shipment *Shipment) error
	UpsertInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
