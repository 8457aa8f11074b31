package domain

import (
	"fmt"
	"time"
)

// Channel distinguishes webhook-materialized revenue from counter sales.
type Channel string

const (
	ChannelOnline   Channel = "online"
	ChannelPhysical Channel = "physical"
)

// Sale is one unit-batch of revenue recognition. Webhook-created sales are
// never updated automatically afterwards; unit cost starts at zero and is
// backfilled by hand.
type Sale struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Provider    *string   `json:"provider,omitempty" gorm:"type:text;uniqueIndex:ux_sales_provider_order_item,priority:1"`
	OrderID     *int64    `json:"order_id,omitempty" gorm:"uniqueIndex:ux_sales_provider_order_item,priority:2"`
	OrderItemID *int64    `json:"order_item_id,omitempty" gorm:"uniqueIndex:ux_sales_provider_order_item,priority:3"`
	Channel     Channel   `json:"channel" gorm:"type:text;not null;default:online"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	UnitCost    int64     `json:"unit_cost" gorm:"not null;default:0"`
	UnitPrice   int64     `json:"unit_price" gorm:"not null;default:0"`
	SoldAt      time.Time `json:"sold_at" gorm:"not null"`
	Note        *string   `json:"note,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}

func (Sale) TableName() string { return "sales" }

// DedupKey is the composite key embedded in the note field. The real
// at-most-once guarantee is the unique index on (provider, order_id,
// order_item_id); the note keeps reports grep-able.
func DedupKey(provider string, orderID, itemID int64) string {
	return fmt.Sprintf("%s:%d:%d", provider, orderID, itemID)
}
