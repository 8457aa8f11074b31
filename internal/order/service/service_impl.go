package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/recuerdos/tienda/internal/catalog/domain"
	"github.com/recuerdos/tienda/internal/config"
	"github.com/recuerdos/tienda/internal/order/domain"
	"github.com/recuerdos/tienda/internal/payment/mercadopago"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	Provider    mercadopago.API
	Store       *config.StoreSettingsHolder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	provider    mercadopago.API
	store       *config.StoreSettingsHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		provider:    p.Provider,
		store:       p.Store,
	}
}

// Checkout snapshots the cart into an Order and opens a provider preference.
// The order's external reference is what reconciliation later keys on.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	settings := s.store.Current()

	order, err := s.createOrder(ctx, req, domain.ChannelOnline, settings.Currency)
	if err != nil {
		return nil, err
	}

	prefReq := mercadopago.PreferenceRequest{
		ExternalReference: order.ExternalReference,
		AutoReturn:        "approved",
	}
	for _, item := range order.Items {
		prefReq.Items = append(prefReq.Items, mercadopago.PreferenceItem{
			Title:      item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  float64(item.UnitPrice) / 100,
			CurrencyID: order.Currency,
		})
	}
	if req.BuyerName != "" || req.BuyerEmail != "" {
		prefReq.Payer = &mercadopago.PreferencePayer{
			Name:  strings.TrimSpace(req.BuyerName),
			Email: strings.TrimSpace(req.BuyerEmail),
		}
	}
	if settings.CheckoutSuccess != "" || settings.CheckoutFailure != "" || settings.CheckoutPending != "" {
		prefReq.BackURLs = &mercadopago.BackURLs{
			Success: settings.CheckoutSuccess,
			Failure: settings.CheckoutFailure,
			Pending: settings.CheckoutPending,
		}
	}

	preference, err := s.provider.CreatePreference(ctx, prefReq)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.SetPreferenceID(ctx, s.db, order.ID, preference.ID, now); err != nil {
		return nil, err
	}

	return &domain.CheckoutResponse{
		OrderID:           snowflake.ID(order.ID).String(),
		ExternalReference: order.ExternalReference,
		PreferenceID:      preference.ID,
		InitPoint:         preference.InitPoint,
		Total:             order.Total,
		Currency:          order.Currency,
	}, nil
}

// WhatsAppCheckout records a manual order and hands back a wa.me link with
// the cart prefilled, for the shop owner to settle over chat.
func (s *Service) WhatsAppCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.WhatsAppCheckoutResponse, error) {
	settings := s.store.Current()
	number := strings.TrimLeft(strings.TrimSpace(settings.WhatsAppNumber), "+")
	if number == "" {
		return nil, domain.ErrWhatsAppDisabled
	}

	order, err := s.createOrder(ctx, req, domain.ChannelWhatsApp, settings.Currency)
	if err != nil {
		return nil, err
	}

	var msg strings.Builder
	msg.WriteString(settings.WhatsAppGreet)
	for _, item := range order.Items {
		fmt.Fprintf(&msg, "\n- %dx %s", item.Quantity, item.Name)
	}
	fmt.Fprintf(&msg, "\nPedido: %s", order.ExternalReference)

	return &domain.WhatsAppCheckoutResponse{
		OrderID:           snowflake.ID(order.ID).String(),
		ExternalReference: order.ExternalReference,
		WhatsAppURL:       "https://wa.me/" + number + "?text=" + url.QueryEscape(msg.String()),
		Total:             order.Total,
		Currency:          order.Currency,
	}, nil
}

func (s *Service) createOrder(ctx context.Context, req domain.CheckoutRequest, channel domain.Channel, currency string) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	now := time.Now().UTC()
	orderID := s.genID.Generate().Int64()
	order := &domain.Order{
		ID:                orderID,
		ExternalReference: fmt.Sprintf("order-%d", orderID),
		Provider:          "mercadopago",
		Status:            domain.StatusPending,
		Channel:           channel,
		Currency:          currency,
		BuyerName:         optional(req.BuyerName),
		BuyerEmail:        optional(req.BuyerEmail),
		BuyerPhone:        optional(req.BuyerPhone),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if len(req.Billing) > 0 {
		raw, err := json.Marshal(req.Billing)
		if err != nil {
			return nil, err
		}
		order.Billing = datatypes.JSON(raw)
	}

	var total int64
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}

		product, err := s.catalogRepo.FindBySlug(ctx, s.db, strings.TrimSpace(line.ProductSlug))
		if err != nil {
			return nil, err
		}
		if product == nil || !product.Active {
			return nil, domain.ErrUnknownProduct
		}

		item := domain.OrderItem{
			ID:          s.genID.Generate().Int64(),
			OrderID:     orderID,
			ProductSlug: product.Slug,
			Name:        product.Name,
			UnitPrice:   product.UnitPrice,
			Quantity:    line.Quantity,
			CreatedAt:   now,
		}

		if code := strings.TrimSpace(line.SkuCode); code != "" {
			skuID := findSkuID(product, code)
			if skuID == 0 {
				return nil, domain.ErrUnknownSku
			}
			item.SkuID = &skuID
		}

		total += product.UnitPrice * int64(line.Quantity)
		order.Items = append(order.Items, item)
	}
	order.Total = total

	if err := s.repo.Create(ctx, s.db, order); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", snowflake.ID(order.ID).String()),
		zap.String("channel", string(channel)),
		zap.Int64("total", total),
	)
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	orders, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(orders))
	for i := range orders {
		resp = append(resp, toResponse(&orders[i]))
	}
	return resp, nil
}

func (s *Service) SetShipment(ctx context.Context, req domain.SetShipmentRequest) (*domain.Response, error) {
	order, err := s.findByIDString(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shipment := &domain.Shipment{
		ID:           s.genID.Generate().Int64(),
		OrderID:      order.ID,
		Carrier:      req.Carrier,
		TrackingCode: req.TrackingCode,
		ShippedAt:    req.ShippedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.UpsertShipment(ctx, s.db, shipment); err != nil {
		return nil, err
	}

	return s.Get(ctx, req.OrderID)
}

func (s *Service) SetInvoice(ctx context.Context, req domain.SetInvoiceRequest) (*domain.Response, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return nil, domain.ErrInvalidInvoice
	}

	order, err := s.findByIDString(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		ID:        s.genID.Generate().Int64(),
		OrderID:   order.ID,
		Number:    number,
		Total:     order.Total,
		IssuedAt:  req.IssuedAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.UpsertInvoice(ctx, s.db, invoice); err != nil {
		return nil, err
	}

	return s.Get(ctx, req.OrderID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	order, err := s.findByIDString(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, order.ID)
}

func (s *Service) findByIDString(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	order, err := s.repo.FindByID(ctx, s.db, orderID.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func findSkuID(product *catalogdomain.Product, code string) int64 {
	for _, sku := range product.Skus {
		if sku.Code == code {
			return sku.ID
		}
	}
	return 0
}

func toResponse(o *domain.Order) domain.Response {
	resp := domain.Response{
		ID:                snowflake.ID(o.ID).String(),
		ExternalReference: o.ExternalReference,
		PreferenceID:      o.PreferenceID,
		PaymentID:         o.PaymentID,
		Provider:          o.Provider,
		Status:            o.Status,
		Channel:           o.Channel,
		Total:             o.Total,
		Currency:          o.Currency,
		BuyerName:         o.BuyerName,
		BuyerEmail:        o.BuyerEmail,
		ApprovedAt:        o.ApprovedAt,
		CreatedAt:         o.CreatedAt,
	}
	for _, item := range o.Items {
		ir := domain.ItemResponse{
			ID:          snowflake.ID(item.ID).String(),
			ProductSlug: item.ProductSlug,
			Name:        item.Name,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
		if item.SkuID != nil {
			ir.SkuID = snowflake.ID(*item.SkuID).String()
		}
		resp.Items = append(resp.Items, ir)
	}
	if o.Shipment != nil {
		resp.Shipment = &domain.ShipmentResponse{
			Carrier:      o.Shipment.Carrier,
			TrackingCode: o.Shipment.TrackingCode,
			ShippedAt:    o.Shipment.ShippedAt,
		}
	}
	if o.Invoice != nil {
		resp.Invoice = &domain.InvoiceResponse{
			Number:   o.Invoice.Number,
			Total:    o.Invoice.Total,
			IssuedAt: o.Invoice.IssuedAt,
		}
	}
	return resp
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
