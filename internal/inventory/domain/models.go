package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// StockDebit marks an order whose inventory has been decremented. The
// primary key doubles as the idempotency guard: inserting it twice fails,
// and the insert shares a transaction with the decrements themselves.
type StockDebit struct {
	OrderID   int64     `json:"order_id" gorm:"primaryKey"`
	DebitedAt time.Time `json:"debited_at" gorm:"not null"`
}

func (StockDebit) TableName() string { return "stock_debits" }

// Line is one SKU decrement request.
type Line struct {
	SkuID    int64
	Quantity int
}

// Service debits inventory for approved orders, at most once per order.
type Service interface {
	// DebitOrderStock runs inside the caller's transaction. It returns false
	// without touching stock when the order was already debited.
	DebitOrderStock(ctx context.Context, tx *gorm.DB, orderID int64, lines []Line) (bool, error)
}
