package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/recuerdos/tienda/internal/inventory/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupInventory(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.Exec(`CREATE TABLE product_skus (
		id BIGINT PRIMARY KEY,
		product_id BIGINT NOT NULL,
		code TEXT NOT NULL,
		name TEXT,
		stock INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE stock_debits (
		order_id BIGINT PRIMARY KEY,
		debited_at DATETIME NOT NULL
	)`).Error)

	return New(Params{Log: zap.NewNop()}), db
}

func seedSku(t *testing.T, db *gorm.DB, id int64, stock int) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO product_skus (id, product_id, code, stock, created_at, updated_at)
		 VALUES (?, 1, ?, ?, ?, ?)`,
		id, fmt.Sprintf("SKU-%d", id), stock, now, now,
	).Error)
}

func stockOf(t *testing.T, db *gorm.DB, id int64) int {
	t.Helper()
	var stock int
	require.NoError(t, db.Table("product_skus").Select("stock").Where("id = ?", id).Scan(&stock).Error)
	return stock
}

func TestDebitOrderStockFloorsAtZero(t *testing.T) {
	svc, db := setupInventory(t)
	seedSku(t, db, 1, 5)
	seedSku(t, db, 2, 0)
	seedSku(t, db, 3, 3)

	debited, err := svc.DebitOrderStock(context.Background(), db, 100, []domain.Line{
		{SkuID: 1, Quantity: 2},
		{SkuID: 2, Quantity: 1},
		{SkuID: 3, Quantity: 3},
	})
	require.NoError(t, err)
	require.True(t, debited)

	require.Equal(t, 3, stockOf(t, db, 1))
	require.Equal(t, 0, stockOf(t, db, 2))
	require.Equal(t, 0, stockOf(t, db, 3))
}

func TestDebitOrderStockIsIdempotent(t *testing.T) {
	svc, db := setupInventory(t)
	seedSku(t, db, 1, 5)

	lines := []domain.Line{{SkuID: 1, Quantity: 2}}

	debited, err := svc.DebitOrderStock(context.Background(), db, 100, lines)
	require.NoError(t, err)
	require.True(t, debited)

	debited, err = svc.DebitOrderStock(context.Background(), db, 100, lines)
	require.NoError(t, err)
	require.False(t, debited)

	require.Equal(t, 3, stockOf(t, db, 1))
}

// A repeat claim is resolved inside the insert statement; a raised unique
// violation would abort the transaction this call shares with sale
// materialization on postgres.
func TestDebitOrderStockRepeatClaimKeepsTransactionUsable(t *testing.T) {
	svc, db := setupInventory(t)
	seedSku(t, db, 1, 5)

	lines := []domain.Line{{SkuID: 1, Quantity: 2}}

	debited, err := svc.DebitOrderStock(context.Background(), db, 100, lines)
	require.NoError(t, err)
	require.True(t, debited)

	err = db.Transaction(func(tx *gorm.DB) error {
		debited, err := svc.DebitOrderStock(context.Background(), tx, 100, lines)
		require.NoError(t, err)
		require.False(t, debited)

		// the transaction must still accept writes after the repeat claim
		debited, err = svc.DebitOrderStock(context.Background(), tx, 101, lines)
		require.NoError(t, err)
		require.True(t, debited)
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, 1, stockOf(t, db, 1))
}

func TestDebitOrderStockMergesDuplicateSkus(t *testing.T) {
	svc, db := setupInventory(t)
	seedSku(t, db, 1, 10)

	debited, err := svc.DebitOrderStock(context.Background(), db, 100, []domain.Line{
		{SkuID: 1, Quantity: 2},
		{SkuID: 1, Quantity: 3},
	})
	require.NoError(t, err)
	require.True(t, debited)
	require.Equal(t, 5, stockOf(t, db, 1))
}

func TestDebitOrderStockIgnoresMissingSku(t *testing.T) {
	svc, db := setupInventory(t)
	seedSku(t, db, 1, 4)

	debited, err := svc.DebitOrderStock(context.Background(), db, 100, []domain.Line{
		{SkuID: 1, Quantity: 1},
		{SkuID: 99, Quantity: 2},
	})
	require.NoError(t, err)
	require.True(t, debited)
	require.Equal(t, 3, stockOf(t, db, 1))
}
