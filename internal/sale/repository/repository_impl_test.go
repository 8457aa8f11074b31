package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/recuerdos/tienda/internal/sale/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqlRecorder captures every statement gorm executes so tests can assert on
// the generated SQL.
type sqlRecorder struct {
	mu    sync.Mutex
	stmts []string
}

func (r *sqlRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})    {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})    {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{})   {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	r.stmts = append(r.stmts, sql)
	r.mu.Unlock()
}

func (r *sqlRecorder) inserts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, stmt := range r.stmts {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(stmt)), "INSERT") {
			out = append(out, stmt)
		}
	}
	return out
}

func setupSaleRepo(t *testing.T) (domain.Repository, *gorm.DB, *sqlRecorder) {
	t.Helper()

	rec := &sqlRecorder{}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: rec})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.Exec(`CREATE TABLE sales (
		id BIGINT PRIMARY KEY,
		provider TEXT,
		order_id BIGINT,
		order_item_id BIGINT,
		channel TEXT NOT NULL DEFAULT 'online',
		quantity INTEGER NOT NULL,
		unit_cost BIGINT NOT NULL DEFAULT 0,
		unit_price BIGINT NOT NULL DEFAULT 0,
		sold_at DATETIME NOT NULL,
		note TEXT,
		created_at DATETIME NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX ux_sales_provider_order_item
		ON sales (provider, order_id, order_item_id)
		WHERE order_id IS NOT NULL AND order_item_id IS NOT NULL`).Error)

	return Provide(), db, rec
}

func onlineSale(id, orderID, itemID int64) *domain.Sale {
	provider := "mercadopago"
	note := domain.DedupKey(provider, orderID, itemID)
	now := time.Now().UTC()
	return &domain.Sale{
		ID:          id,
		Provider:    &provider,
		OrderID:     &orderID,
		OrderItemID: &itemID,
		Channel:     domain.ChannelOnline,
		Quantity:    1,
		UnitPrice:   1000,
		SoldAt:      now,
		Note:        &note,
		CreatedAt:   now,
	}
}

func TestInsertIgnoreDuplicate(t *testing.T) {
	repo, db, _ := setupSaleRepo(t)

	created, err := repo.InsertIgnoreDuplicate(context.Background(), db, onlineSale(1, 100, 200))
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.InsertIgnoreDuplicate(context.Background(), db, onlineSale(2, 100, 200))
	require.NoError(t, err)
	require.False(t, created)

	var count int64
	require.NoError(t, db.Table("sales").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

// A duplicate must be resolved inside the insert statement itself. If the
// statement raised a unique violation the enclosing transaction would be
// aborted on postgres and every later statement in it would fail.
func TestInsertIgnoreDuplicateKeepsTransactionUsable(t *testing.T) {
	repo, db, rec := setupSaleRepo(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		created, err := repo.InsertIgnoreDuplicate(context.Background(), tx, onlineSale(1, 100, 200))
		require.NoError(t, err)
		require.True(t, created)

		created, err = repo.InsertIgnoreDuplicate(context.Background(), tx, onlineSale(2, 100, 200))
		require.NoError(t, err)
		require.False(t, created)

		// the transaction must still accept writes after the conflict
		created, err = repo.InsertIgnoreDuplicate(context.Background(), tx, onlineSale(3, 100, 201))
		require.NoError(t, err)
		require.True(t, created)
		return nil
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("sales").Count(&count).Error)
	require.EqualValues(t, 2, count)

	inserts := rec.inserts()
	require.NotEmpty(t, inserts)
	for _, stmt := range inserts {
		require.Contains(t, strings.ToUpper(stmt), "ON CONFLICT")
	}
}
