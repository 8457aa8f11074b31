package domain

import (
	"context"
	"errors"
	"time"

	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
	"gorm.io/gorm"
)

type Service interface {
	// MaterializeOrder creates one sale per order item that does not already
	// have one, inside the caller's transaction. Returns the number created.
	MaterializeOrder(ctx context.Context, tx *gorm.DB, order *orderdomain.Order, soldAt time.Time) (int, error)
	CreatePhysical(ctx context.Context, req CreatePhysicalRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
}

type ListRequest struct {
	Channel string
	From    *time.Time
	To      *time.Time
	Limit   int
}

type CreatePhysicalRequest struct {
	Quantity  int        `json:"quantity"`
	UnitCost  int64      `json:"unit_cost"`
	UnitPrice int64      `json:"unit_price"`
	SoldAt    *time.Time `json:"sold_at"`
	Note      *string    `json:"note"`
}

type Response struct {
	ID        string    `json:"id"`
	Provider  *string   `json:"provider,omitempty"`
	OrderID   string    `json:"order_id,omitempty"`
	Channel   Channel   `json:"channel"`
	Quantity  int       `json:"quantity"`
	UnitCost  int64     `json:"unit_cost"`
	UnitPrice int64     `json:"unit_price"`
	SoldAt    time.Time `json:"sold_at"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidPrice    = errors.New("invalid_price")
)
