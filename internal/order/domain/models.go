package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Status is the internal order state driven by reconciliation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusInProcess Status = "in_process"
	StatusUnknown   Status = "unknown"
)

// Channel records how the order was placed.
type Channel string

const (
	ChannelOnline   Channel = "online"
	ChannelWhatsApp Channel = "whatsapp"
)

// Order is created at checkout and mutated only by reconciliation (status,
// payment id, raw payload) and admin actions (shipment, invoice, delete).
type Order struct {
	ID                int64          `json:"id" gorm:"primaryKey"`
	ExternalReference string         `json:"external_reference" gorm:"type:text;not null;uniqueIndex:ux_orders_external_reference"`
	PreferenceID      *string        `json:"preference_id,omitempty" gorm:"type:text;index:ix_orders_preference_id"`
	PaymentID         *string        `json:"payment_id,omitempty" gorm:"type:text"`
	Provider          string         `json:"provider" gorm:"type:text;not null;default:mercadopago"`
	Status            Status         `json:"status" gorm:"type:text;not null;default:pending"`
	Channel           Channel        `json:"channel" gorm:"type:text;not null;default:online"`
	Total             int64          `json:"total" gorm:"not null;default:0"`
	Currency          string         `json:"currency" gorm:"type:text;not null;default:ARS"`
	BuyerName         *string        `json:"buyer_name,omitempty" gorm:"type:text"`
	BuyerEmail        *string        `json:"buyer_email,omitempty" gorm:"type:text"`
	BuyerPhone        *string        `json:"buyer_phone,omitempty" gorm:"type:text"`
	Billing           datatypes.JSON `json:"billing,omitempty" gorm:"type:jsonb"`
	RawPayload        datatypes.JSON `json:"raw_payload,omitempty" gorm:"type:jsonb"`
	ApprovedAt        *time.Time     `json:"approved_at,omitempty"`
	Items             []OrderItem    `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Shipment          *Shipment      `json:"shipment,omitempty" gorm:"foreignKey:OrderID"`
	Invoice           *Invoice       `json:"invoice,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"not null"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is an immutable snapshot taken at order-creation time.
type OrderItem struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	OrderID     int64     `json:"order_id" gorm:"not null;index:ix_order_items_order_id"`
	ProductSlug string    `json:"product_slug" gorm:"type:text;not null"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	UnitPrice   int64     `json:"unit_price" gorm:"not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	SkuID       *int64    `json:"sku_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

type Shipment struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	OrderID      int64      `json:"order_id" gorm:"not null;uniqueIndex:ux_shipments_order_id"`
	Carrier      *string    `json:"carrier,omitempty" gorm:"type:text"`
	TrackingCode *string    `json:"tracking_code,omitempty" gorm:"type:text"`
	ShippedAt    *time.Time `json:"shipped_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"not null"`
}

func (Shipment) TableName() string { return "shipments" }

type Invoice struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	OrderID   int64      `json:"order_id" gorm:"not null;uniqueIndex:ux_invoices_order_id"`
	Number    string     `json:"number" gorm:"type:text;not null"`
	Total     int64      `json:"total" gorm:"not null;default:0"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null"`
}

func (Invoice) TableName() string { return "invoices" }

// MapProviderStatus collapses any provider payment status outside the
// allow-list to StatusUnknown. Total: every input maps to exactly one status.
func MapProviderStatus(providerStatus string) Status {
	switch Status(providerStatus) {
	case StatusApproved, StatusRejected, StatusInProcess, StatusPending:
		return Status(providerStatus)
	default:
		return StatusUnknown
	}
}
