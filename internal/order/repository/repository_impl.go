package repository

import (
	"context"
	"time"

	"github.com/recuerdos/tienda/internal/order/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByExternalReference(ctx context.Context, db *gorm.DB, ref string) (*domain.Order, error) {
	return r.findOne(ctx, db, "external_reference = ?", ref)
}

func (r *repo) FindByPreferenceID(ctx context.Context, db *gorm.DB, preferenceID string) (*domain.Order, error) {
	return r.findOne(ctx, db, "preference_id = ?", preferenceID)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Items").
		Preload("Shipment").
		Preload("Invoice").
		First(&o, query, arg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Order, error) {
	stmt := db.WithContext(ctx).Model(&domain.Order{}).Preload("Items")
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Channel != "" {
		stmt = stmt.Where("channel = ?", filter.Channel)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var orders []domain.Order
	if err := stmt.Order("created_at DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) UpdateReconciliation(ctx context.Context, db *gorm.DB, id int64, status domain.Status, paymentID string, payload datatypes.JSON, approvedAt *time.Time, now time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": now,
	}
	if paymentID != "" {
		updates["payment_id"] = paymentID
	}
	if len(payload) > 0 {
		updates["raw_payload"] = payload
	}
	if approvedAt != nil {
		updates["approved_at"] = approvedAt
	}
	return db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) SetPreferenceID(ctx context.Context, db *gorm.DB, id int64, preferenceID string, now time.Time) error {
	return db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"preference_id": preferenceID, "updated_at": now}).Error
}

func (r *repo) UpsertShipment(ctx context.Context, db *gorm.DB, shipment *domain.Shipment) error {
	var existing domain.Shipment
	err := db.WithContext(ctx).First(&existing, "order_id = ?", shipment.OrderID).Error
	if err == gorm.ErrRecordNotFound {
		return db.WithContext(ctx).Create(shipment).Error
	}
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&domain.Shipment{}).
		Where("order_id = ?", shipment.OrderID).
		Updates(map[string]any{
			"carrier":       shipment.Carrier,
			"tracking_code": shipment.TrackingCode,
			"shipped_at":    shipment.ShippedAt,
			"updated_at":    shipment.UpdatedAt,
		}).Error
}

func (r *repo) UpsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	var existing domain.Invoice
	err := db.WithContext(ctx).First(&existing, "order_id = ?", invoice.OrderID).Error
	if err == gorm.ErrRecordNotFound {
		return db.WithContext(ctx).Create(invoice).Error
	}
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("order_id = ?", invoice.OrderID).
		Updates(map[string]any{
			"number":    invoice.Number,
			"total":     invoice.Total,
			"issued_at": invoice.IssuedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.Shipment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Order{}, "id = ?", id).Error
	})
}
