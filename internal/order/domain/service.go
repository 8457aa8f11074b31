package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
	WhatsAppCheckout(ctx context.Context, req CheckoutRequest) (*WhatsAppCheckoutResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	SetShipment(ctx context.Context, req SetShipmentRequest) (*Response, error)
	SetInvoice(ctx context.Context, req SetInvoiceRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Status  string
	Channel string
	Limit   int
}

type CheckoutItem struct {
	ProductSlug string `json:"product_slug"`
	SkuCode     string `json:"sku_code"`
	Quantity    int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items      []CheckoutItem `json:"items"`
	BuyerName  string         `json:"buyer_name"`
	BuyerEmail string         `json:"buyer_email"`
	BuyerPhone string         `json:"buyer_phone"`
	Billing    map[string]any `json:"billing"`
}

type CheckoutResponse struct {
	OrderID           string `json:"order_id"`
	ExternalReference string `json:"external_reference"`
	PreferenceID      string `json:"preference_id"`
	InitPoint         string `json:"init_point"`
	Total             int64  `json:"total"`
	Currency          string `json:"currency"`
}

type WhatsAppCheckoutResponse struct {
	OrderID           string `json:"order_id"`
	ExternalReference string `json:"external_reference"`
	WhatsAppURL       string `json:"whatsapp_url"`
	Total             int64  `json:"total"`
	Currency          string `json:"currency"`
}

type SetShipmentRequest struct {
	OrderID      string     `json:"-"`
	Carrier      *string    `json:"carrier"`
	TrackingCode *string    `json:"tracking_code"`
	ShippedAt    *time.Time `json:"shipped_at"`
}

type SetInvoiceRequest struct {
	OrderID  string     `json:"-"`
	Number   string     `json:"number"`
	IssuedAt *time.Time `json:"issued_at"`
}

type ItemResponse struct {
	ID          string `json:"id"`
	ProductSlug string `json:"product_slug"`
	Name        string `json:"name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	SkuID       string `json:"sku_id,omitempty"`
}

type ShipmentResponse struct {
	Carrier      *string    `json:"carrier,omitempty"`
	TrackingCode *string    `json:"tracking_code,omitempty"`
	ShippedAt    *time.Time `json:"shipped_at,omitempty"`
}

type InvoiceResponse struct {
	Number   string     `json:"number"`
	Total    int64      `json:"total"`
	IssuedAt *time.Time `json:"issued_at,omitempty"`
}

type Response struct {
	ID                string            `json:"id"`
	ExternalReference string            `json:"external_reference"`
	PreferenceID      *string           `json:"preference_id,omitempty"`
	PaymentID         *string           `json:"payment_id,omitempty"`
	Provider          string            `json:"provider"`
	Status            Status            `json:"status"`
	Channel           Channel           `json:"channel"`
	Total             int64             `json:"total"`
	Currency          string            `json:"currency"`
	BuyerName         *string           `json:"buyer_name,omitempty"`
	BuyerEmail        *string           `json:"buyer_email,omitempty"`
	Items             []ItemResponse    `json:"items"`
	Shipment          *ShipmentResponse `json:"shipment,omitempty"`
	Invoice           *InvoiceResponse  `json:"invoice,omitempty"`
	ApprovedAt        *time.Time        `json:"approved_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

var (
	ErrNotFound         = errors.New("not_found")
	ErrEmptyCart        = errors.New("empty_cart")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrUnknownProduct   = errors.New("unknown_product")
	ErrUnknownSku       = errors.New("unknown_sku")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidInvoice   = errors.New("invalid_invoice")
	ErrWhatsAppDisabled = errors.New("whatsapp_not_configured")
)
