package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogrepo "github.com/recuerdos/tienda/internal/catalog/repository"
	"github.com/recuerdos/tienda/internal/config"
	"github.com/recuerdos/tienda/internal/order/domain"
	orderrepo "github.com/recuerdos/tienda/internal/order/repository"
	"github.com/recuerdos/tienda/internal/payment/mercadopago"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type preferenceStub struct {
	lastRequest *mercadopago.PreferenceRequest
	err         error
}

func (p *preferenceStub) GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error) {
	return nil, mercadopago.ErrResourceNotFound
}

func (p *preferenceStub) GetMerchantOrder(ctx context.Context, id string) (*mercadopago.MerchantOrder, error) {
	return nil, mercadopago.ErrResourceNotFound
}

func (p *preferenceStub) CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	p.lastRequest = &req
	if p.err != nil {
		return nil, p.err
	}
	return &mercadopago.Preference{
		ID:        "pref-abc",
		InitPoint: "https://checkout.example.com/pref-abc",
	}, nil
}

func setupOrderService(t *testing.T, settings config.StoreSettings) (domain.Service, *gorm.DB, *preferenceStub, *snowflake.Node) {
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
	prepareOrderSchema(t, db)

	provider := &preferenceStub{}
	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        orderrepo.Provide(),
		CatalogRepo: catalogrepo.Provide(),
		Provider:    provider,
		Store:       config.NewStaticStoreSettingsHolder(settings),
	})
	return svc, db, provider, node
}

func prepareOrderSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	statements := []string{
		`CREATE TABLE products (
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
		)`,
		`CREATE UNIQUE INDEX ux_products_slug ON products (slug)`,
		`CREATE TABLE product_skus (
			id BIGINT PRIMARY KEY,
			product_id BIGINT NOT NULL,
			code TEXT NOT NULL,
			name TEXT,
			stock INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE orders (
			id BIGINT PRIMARY KEY,
			external_reference TEXT NOT NULL,
			preference_id TEXT,
			payment_id TEXT,
			provider TEXT NOT NULL DEFAULT 'mercadopago',
			status TEXT NOT NULL DEFAULT 'pending',
			channel TEXT NOT NULL DEFAULT 'online',
			total BIGINT NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'ARS',
			buyer_name TEXT,
			buyer_email TEXT,
			buyer_phone TEXT,
			billing JSON,
			raw_payload JSON,
			approved_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_orders_external_reference ON orders (external_reference)`,
		`CREATE TABLE order_items (
			id BIGINT PRIMARY KEY,
			order_id BIGINT NOT NULL,
			product_slug TEXT NOT NULL,
			name TEXT NOT NULL,
			unit_price BIGINT NOT NULL,
			quantity INTEGER NOT NULL,
			sku_id BIGINT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE shipments (
			id BIGINT PRIMARY KEY,
			order_id BIGINT NOT NULL,
			carrier TEXT,
			tracking_code TEXT,
			shipped_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE invoices (
			id BIGINT PRIMARY KEY,
			order_id BIGINT NOT NULL,
			number TEXT NOT NULL,
			total BIGINT NOT NULL DEFAULT 0,
			issued_at DATETIME,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, productSlug string, price int64, skuCode string) {
	t.Helper()
	now := time.Now().UTC()
	productID := node.Generate().Int64()
	require.NoError(t, db.Exec(
		`INSERT INTO products (id, slug, name, unit_price, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		productID, productSlug, productSlug, price, now, now,
	).Error)
	if skuCode != "" {
		require.NoError(t, db.Exec(
			`INSERT INTO product_skus (id, product_id, code, stock, created_at, updated_at)
			 VALUES (?, ?, ?, 10, ?, ?)`,
			node.Generate().Int64(), productID, skuCode, now, now,
		).Error)
	}
}

func TestCheckoutCreatesOrderAndPreference(t *testing.T) {
	svc, db, provider, node := setupOrderService(t, config.DefaultStoreSettings())
	seedProduct(t, db, node, "mate-imperial", 1850000, "MATE-NEGRO")

	resp, err := svc.Checkout(context.Background(), domain.CheckoutRequest{
		Items: []domain.CheckoutItem{
			{ProductSlug: "mate-imperial", SkuCode: "MATE-NEGRO", Quantity: 2},
		},
		BuyerName:  "Ana",
		BuyerEmail: "ana@example.com",
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(resp.ExternalReference, "order-"))
	require.Equal(t, "pref-abc", resp.PreferenceID)
	require.Equal(t, "https://checkout.example.com/pref-abc", resp.InitPoint)
	require.EqualValues(t, 3700000, resp.Total)
	require.Equal(t, "ARS", resp.Currency)

	require.NotNil(t, provider.lastRequest)
	require.Equal(t, resp.ExternalReference, provider.lastRequest.ExternalReference)
	require.Len(t, provider.lastRequest.Items, 1)
	// provider speaks unit amounts, not cents
	require.InDelta(t, 18500.0, provider.lastRequest.Items[0].UnitPrice, 0.001)

	var status, preferenceID string
	require.NoError(t, db.Table("orders").Select("status").Where("external_reference = ?", resp.ExternalReference).Scan(&status).Error)
	require.NoError(t, db.Table("orders").Select("preference_id").Where("external_reference = ?", resp.ExternalReference).Scan(&preferenceID).Error)
	require.Equal(t, "pending", status)
	require.Equal(t, "pref-abc", preferenceID)
}

func TestCheckoutValidation(t *testing.T) {
	svc, db, _, node := setupOrderService(t, config.DefaultStoreSettings())
	seedProduct(t, db, node, "mate-imperial", 1850000, "MATE-NEGRO")

	_, err := svc.Checkout(context.Background(), domain.CheckoutRequest{})
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = svc.Checkout(context.Background(), domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductSlug: "mate-imperial", Quantity: 0}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Checkout(context.Background(), domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductSlug: "no-existe", Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrUnknownProduct)

	_, err = svc.Checkout(context.Background(), domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductSlug: "mate-imperial", SkuCode: "NOPE", Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrUnknownSku)
}

func TestCheckoutProviderFailureDoesNotLeakPreference(t *testing.T) {
	svc, db, provider, node := setupOrderService(t, config.DefaultStoreSettings())
	seedProduct(t, db, node, "mate-imperial", 1850000, "")
	provider.err = errors.New("provider down")

	_, err := svc.Checkout(context.Background(), domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductSlug: "mate-imperial", Quantity: 1}},
	})
	require.Error(t, err)

	// the order row stays for manual follow-up, without a preference id
	var count int64
	require.NoError(t, db.Table("orders").Where("preference_id IS NOT NULL").Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestWhatsAppCheckout(t *testing.T) {
	settings := config.DefaultStoreSettings()
	settings.WhatsAppNumber = "+5491122334455"
	svc, db, _, node := setupOrderService(t, settings)
	seedProduct(t, db, node, "llavero-obelisco", 350000, "")

	resp, err := svc.WhatsAppCheckout(context.Background(), domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductSlug: "llavero-obelisco", Quantity: 3}},
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(resp.WhatsAppURL, "https://wa.me/5491122334455?text="), resp.WhatsAppURL)
	require.Contains(t, resp.WhatsAppURL, "text=")
	require.NotContains(t, resp.WhatsAppURL, " ", "message must be url-encoded")

	var channel string
	require.NoError(t, db.Table("orders").Select("channel").Where("external_reference = ?", resp.ExternalReference).Scan(&channel).Error)
	require.Equal(t, "whatsapp", channel)
}

func TestWhatsAppCheckoutDisabledWithoutNumber(t *testing.T) {
	svc, db, _, node := setupOrderService(t, config.DefaultStoreSettings())
	seedProduct(t, db, node, "llavero-obelisco", 350000, "")

	_, err := svc.WhatsAppCheckout(context.Background(), domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductSlug: "llavero-obelisco", Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrWhatsAppDisabled)
}

func TestSetInvoiceAndGet(t *testing.T) {
	svc, db, _, node := setupOrderService(t, config.DefaultStoreSettings())
	seedProduct(t, db, node, "mate-imperial", 1850000, "")

	created, err := svc.Checkout(context.Background(), domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductSlug: "mate-imperial", Quantity: 1}},
	})
	require.NoError(t, err)

	issued := time.Now().UTC()
	order, err := svc.SetInvoice(context.Background(), domain.SetInvoiceRequest{
		OrderID:  created.OrderID,
		Number:   "0001-00001234",
		IssuedAt: &issued,
	})
	require.NoError(t, err)
	require.NotNil(t, order.Invoice)
	require.Equal(t, "0001-00001234", order.Invoice.Number)
	require.Equal(t, created.Total, order.Invoice.Total)

	_, err = svc.SetInvoice(context.Background(), domain.SetInvoiceRequest{OrderID: created.OrderID})
	require.ErrorIs(t, err, domain.ErrInvalidInvoice)
}
