package service

import (
	"context"
	"sort"
	"time"

	"github.com/recuerdos/tienda/internal/inventory/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	Log *zap.Logger
}

type Service struct {
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		log: p.Log.Named("inventory.service"),
	}
}

// DebitOrderStock claims the per-order idempotency row, then decrements each
// SKU floored at zero. Locked reads keep concurrent debits of the same SKU
// consistent; the claim insert keeps the whole operation at-most-once.
func (s *Service) DebitOrderStock(ctx context.Context, tx *gorm.DB, orderID int64, lines []domain.Line) (bool, error) {
	claim := domain.StockDebit{
		OrderID:   orderID,
		DebitedAt: time.Now().UTC(),
	}
	// conflict handled in-statement so a repeat claim cannot abort the
	// transaction the caller shares with sale materialization
	res := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if len(lines) == 0 {
		return true, nil
	}

	want := make(map[int64]int, len(lines))
	for _, line := range lines {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		want[line.SkuID] += qty
	}

	ids := make([]int64, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}
	// deterministic lock order
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	type skuRow struct {
		ID    int64 `gorm:"column:id"`
		Stock int   `gorm:"column:stock"`
	}
	query := tx.WithContext(ctx).Table("product_skus")
	// sqlite has no row locks; its writes are serialized anyway
	if tx.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []skuRow
	if err := query.
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return false, err
	}

	current := make(map[int64]int, len(rows))
	for _, row := range rows {
		current[row.ID] = row.Stock
	}

	for _, id := range ids {
		available, ok := current[id]
		if !ok {
			s.log.Warn("order item references missing sku",
				zap.Int64("order_id", orderID),
				zap.Int64("sku_id", id),
			)
			continue
		}

		// floored at zero, never negative
		remaining := available - want[id]
		if remaining < 0 {
			remaining = 0
		}
		if err := tx.WithContext(ctx).
			Table("product_skus").
			Where("id = ?", id).
			Updates(map[string]any{"stock": remaining, "updated_at": time.Now().UTC()}).Error; err != nil {
			return false, err
		}
	}

	return true, nil
}
