package repository

import (
	"context"

	"github.com/recuerdos/tienda/internal/sale/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// InsertIgnoreDuplicate resolves the unique-index conflict in the statement
// itself; a raised unique violation would abort the surrounding transaction
// on postgres.
func (r *repo) InsertIgnoreDuplicate(ctx context.Context, db *gorm.DB, sale *domain.Sale) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(sale)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Create(sale).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Sale, error) {
	stmt := db.WithContext(ctx).Model(&domain.Sale{})
	if filter.Channel != "" {
		stmt = stmt.Where("channel = ?", filter.Channel)
	}
	if filter.From != nil {
		stmt = stmt.Where("sold_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("sold_at < ?", *filter.To)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var sales []domain.Sale
	if err := stmt.Order("sold_at DESC").Limit(limit).Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
