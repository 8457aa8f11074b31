package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// InsertIgnoreDuplicate returns false when the sale's unique key
	// (provider, order_id, order_item_id) already exists.
	InsertIgnoreDuplicate(ctx context.Context, db *gorm.DB, sale *Sale) (bool, error)
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Sale, error)
}
