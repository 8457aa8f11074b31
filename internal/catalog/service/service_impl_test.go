package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/recuerdos/tienda/internal/catalog/domain"
	"github.com/recuerdos/tienda/internal/catalog/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalogService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.Exec(`CREATE TABLE products (
		id BIGINT PRIMARY KEY,
		slug TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		unit_price BIGINT NOT NULL DEFAULT 0,
		unit_cost BIGINT NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT 1,
		image_url TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX ux_products_slug ON products (slug)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE product_skus (
		id BIGINT PRIMARY KEY,
		product_id BIGINT NOT NULL,
		code TEXT NOT NULL,
		name TEXT,
		stock INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX ux_product_skus_product_code
		ON product_skus (product_id, code)`).Error)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestCreateProductSlugsName(t *testing.T) {
	svc, _ := setupCatalogService(t)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:      "Mate Imperial",
		UnitPrice: 1850000,
	})
	require.NoError(t, err)
	require.Equal(t, "mate-imperial", resp.Slug)
	require.True(t, resp.Active)

	_, err = svc.Create(context.Background(), domain.CreateRequest{
		Name:      "Mate Imperial",
		UnitPrice: 1900000,
	})
	require.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := setupCatalogService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Name: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "Mate", UnitPrice: -1})
	require.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestAddSku(t *testing.T) {
	svc, _ := setupCatalogService(t)

	product, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:      "Remera Buenos Aires",
		UnitPrice: 1200000,
	})
	require.NoError(t, err)

	sku, err := svc.AddSku(context.Background(), domain.AddSkuRequest{
		ProductSlug: product.Slug,
		Code:        "REM-BA-M",
		Stock:       15,
	})
	require.NoError(t, err)
	require.Equal(t, "REM-BA-M", sku.Code)
	require.Equal(t, 15, sku.Stock)

	_, err = svc.AddSku(context.Background(), domain.AddSkuRequest{
		ProductSlug: product.Slug,
		Code:        "REM-BA-M",
		Stock:       5,
	})
	require.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.AddSku(context.Background(), domain.AddSkuRequest{
		ProductSlug: "no-existe",
		Code:        "X",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	fetched, err := svc.Get(context.Background(), product.Slug)
	require.NoError(t, err)
	require.Len(t, fetched.Skus, 1)
}

func TestUpdateProduct(t *testing.T) {
	svc, _ := setupCatalogService(t)

	product, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:      "Llavero Obelisco",
		UnitPrice: 350000,
	})
	require.NoError(t, err)

	newPrice := int64(400000)
	inactive := false
	updated, err := svc.Update(context.Background(), domain.UpdateRequest{
		Slug:      product.Slug,
		UnitPrice: &newPrice,
		Active:    &inactive,
	})
	require.NoError(t, err)
	require.EqualValues(t, 400000, updated.UnitPrice)
	require.False(t, updated.Active)
	// slug is immutable on update
	require.Equal(t, product.Slug, updated.Slug)
}
