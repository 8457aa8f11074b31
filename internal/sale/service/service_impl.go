package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
	"github.com/recuerdos/tienda/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("sale.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// MaterializeOrder creates the accounting records for an approved order.
// Duplicate invocations are absorbed by the unique index on
// (provider, order_id, order_item_id): conflicting inserts are ignored.
// Unit cost is recorded as zero; cost of goods is backfilled manually.
func (s *Service) MaterializeOrder(ctx context.Context, tx *gorm.DB, order *orderdomain.Order, soldAt time.Time) (int, error) {
	if order == nil {
		return 0, nil
	}
	if soldAt.IsZero() {
		soldAt = time.Now().UTC()
	}

	created := 0
	for i := range order.Items {
		item := &order.Items[i]

		provider := order.Provider
		orderID := order.ID
		itemID := item.ID
		note := domain.DedupKey(provider, orderID, itemID)

		sale := &domain.Sale{
			ID:          s.genID.Generate().Int64(),
			Provider:    &provider,
			OrderID:     &orderID,
			OrderItemID: &itemID,
			Channel:     domain.ChannelOnline,
			Quantity:    item.Quantity,
			UnitCost:    0,
			UnitPrice:   item.UnitPrice,
			SoldAt:      soldAt,
			Note:        &note,
			CreatedAt:   time.Now().UTC(),
		}

		inserted, err := s.repo.InsertIgnoreDuplicate(ctx, tx, sale)
		if err != nil {
			return created, err
		}
		if !inserted {
			s.log.Debug("sale already materialized",
				zap.String("dedup_key", note),
			)
			continue
		}
		created++
	}

	return created, nil
}

func (s *Service) CreatePhysical(ctx context.Context, req domain.CreatePhysicalRequest) (*domain.Response, error) {
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.UnitPrice < 0 || req.UnitCost < 0 {
		return nil, domain.ErrInvalidPrice
	}

	soldAt := time.Now().UTC()
	if req.SoldAt != nil {
		soldAt = req.SoldAt.UTC()
	}

	sale := &domain.Sale{
		ID:        s.genID.Generate().Int64(),
		Channel:   domain.ChannelPhysical,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		UnitPrice: req.UnitPrice,
		SoldAt:    soldAt,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, sale); err != nil {
		return nil, err
	}

	resp := toResponse(sale)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	sales, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(sales))
	for i := range sales {
		resp = append(resp, toResponse(&sales[i]))
	}
	return resp, nil
}

func toResponse(sale *domain.Sale) domain.Response {
	resp := domain.Response{
		ID:        snowflake.ID(sale.ID).String(),
		Provider:  sale.Provider,
		Channel:   sale.Channel,
		Quantity:  sale.Quantity,
		UnitCost:  sale.UnitCost,
		UnitPrice: sale.UnitPrice,
		SoldAt:    sale.SoldAt,
		Note:      sale.Note,
		CreatedAt: sale.CreatedAt,
	}
	if sale.OrderID != nil {
		resp.OrderID = snowflake.ID(*sale.OrderID).String()
	}
	return resp
}
